package orchestrator

import (
	"context"
	"testing"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func condition(app *models.Application, typ models.ConditionType, status models.ConditionStatus) models.Condition {
	c := models.Condition{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		Name:          "Proof of homeowners insurance",
		Type:          typ,
		Status:        status,
		CreatedAt:     app.CreatedAt,
	}
	app.Conditions = append(app.Conditions, c)
	return c
}

func TestAddCondition(t *testing.T) {
	app := application(models.StatusConditionalApproval)
	h := newHarness(t, app)

	c, err := h.orch.AddCondition(context.Background(), app.ID, NewCondition{Name: "Verify gift funds"})
	require.NoError(t, err)

	assert.Equal(t, models.ConditionPriorToClosing, c.Type)
	assert.Equal(t, models.ConditionPending, c.Status)
	assert.Equal(t, testNow, c.CreatedAt)

	saved := h.store.get(app.ID)
	require.Len(t, saved.Conditions, 1)
	assert.Equal(t, c.ID, saved.Conditions[0].ID)
	require.Len(t, h.store.saves, 1)
	assert.Len(t, h.store.saves[0].Conditions, 1)
	assert.Empty(t, h.store.saves[0].ConditionUpdates)
}

func TestAddCondition_Validation(t *testing.T) {
	app := application(models.StatusConditionalApproval)
	h := newHarness(t, app)

	_, err := h.orch.AddCondition(context.Background(), app.ID, NewCondition{Name: "  "})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = h.orch.AddCondition(context.Background(), app.ID, NewCondition{Name: "Flood cert", Type: "Someday"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	funded := application(models.StatusFunded)
	h = newHarness(t, funded)
	_, err = h.orch.AddCondition(context.Background(), funded.ID, NewCondition{Name: "Flood cert"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Empty(t, h.store.saves)
}

func TestUpdateConditionStatus_LastBlockingConditionClearsToClose(t *testing.T) {
	app := application(models.StatusConditionalApproval)
	first := condition(app, models.ConditionPriorToClosing, models.ConditionWaived)
	last := condition(app, models.ConditionPriorToFunding, models.ConditionInProgress)
	condition(app, models.ConditionPostClosing, models.ConditionPending)
	h := newHarness(t, app)

	res, err := h.orch.UpdateConditionStatus(context.Background(), app.ID, last.ID, models.ConditionSatisfied)
	require.NoError(t, err)

	assert.True(t, res.ClearedToClose)
	require.NotNil(t, res.Condition.SatisfiedAt)
	assert.Equal(t, testNow, *res.Condition.SatisfiedAt)

	saved := h.store.get(app.ID)
	assert.Equal(t, models.StatusClearToClose, saved.Status)
	require.Len(t, saved.StatusHistory, 1)
	assert.Equal(t, models.StatusConditionalApproval, saved.StatusHistory[0].FromStatus)
	assert.Equal(t, clearToCloseReason, saved.StatusHistory[0].Reason)
	assert.Equal(t, models.ActorSystem, saved.StatusHistory[0].ChangedBy)

	changes := h.store.saves[0]
	require.Len(t, changes.ConditionUpdates, 1)
	assert.Equal(t, last.ID, changes.ConditionUpdates[0].ID)
	assert.Len(t, changes.History, 1)
	assert.Len(t, h.listener.entries, 1)
	assert.Equal(t, models.ConditionWaived, saved.Conditions[0].Status, "untouched condition %s", first.ID)
}

func TestUpdateConditionStatus_OpenConditionKeepsStatus(t *testing.T) {
	app := application(models.StatusConditionalApproval)
	a := condition(app, models.ConditionPriorToClosing, models.ConditionPending)
	condition(app, models.ConditionPriorToClosing, models.ConditionNotMet)
	h := newHarness(t, app)

	res, err := h.orch.UpdateConditionStatus(context.Background(), app.ID, a.ID, models.ConditionSatisfied)
	require.NoError(t, err)

	assert.False(t, res.ClearedToClose)
	saved := h.store.get(app.ID)
	assert.Equal(t, models.StatusConditionalApproval, saved.Status)
	assert.Empty(t, saved.StatusHistory)
	assert.Empty(t, h.store.saves[0].History)
}

func TestUpdateConditionStatus_OutsideConditionalApprovalNoTransition(t *testing.T) {
	app := application(models.StatusUnderwriting)
	c := condition(app, models.ConditionPriorToApproval, models.ConditionPending)
	h := newHarness(t, app)

	res, err := h.orch.UpdateConditionStatus(context.Background(), app.ID, c.ID, models.ConditionWaived)
	require.NoError(t, err)

	assert.False(t, res.ClearedToClose)
	assert.Nil(t, res.Condition.SatisfiedAt)
	assert.Equal(t, models.StatusUnderwriting, h.store.get(app.ID).Status)
}

func TestUpdateConditionStatus_SatisfiedAtIsStampedOnce(t *testing.T) {
	app := application(models.StatusUnderwriting)
	c := condition(app, models.ConditionPriorToClosing, models.ConditionSatisfied)
	earlier := app.CreatedAt
	app.Conditions[0].SatisfiedAt = &earlier
	h := newHarness(t, app)

	res, err := h.orch.UpdateConditionStatus(context.Background(), app.ID, c.ID, models.ConditionSatisfied)
	require.NoError(t, err)
	assert.Equal(t, earlier, *res.Condition.SatisfiedAt)
}

func TestUpdateConditionStatus_Errors(t *testing.T) {
	app := application(models.StatusConditionalApproval)
	c := condition(app, models.ConditionPriorToClosing, models.ConditionPending)
	h := newHarness(t, app)

	_, err := h.orch.UpdateConditionStatus(context.Background(), app.ID, c.ID, "Done")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	unknown := uuid.New()
	_, err = h.orch.UpdateConditionStatus(context.Background(), app.ID, unknown, models.ConditionSatisfied)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, unknown.String(), apperrors.AsStandardError(err).Metadata["conditionId"])

	_, err = h.orch.UpdateConditionStatus(context.Background(), uuid.New(), c.ID, models.ConditionSatisfied)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Empty(t, h.store.saves)
}
