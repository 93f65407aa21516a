package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/statemachine"

	"github.com/google/uuid"
)

const clearToCloseReason = "All closing conditions cleared"

type NewCondition struct {
	Name        string
	Description string
	Type        models.ConditionType
	DueDate     *time.Time
}

// ConditionResult is the application after a condition changed. ClearedToClose
// is set when the change moved it from ConditionalApproval to ClearToClose.
type ConditionResult struct {
	Application    *models.Application
	Condition      models.Condition
	ClearedToClose bool
}

// AddCondition attaches a Pending condition. Type defaults to PriorToClosing.
func (o *Orchestrator) AddCondition(ctx context.Context, applicationID uuid.UUID, nc NewCondition) (cond *models.Condition, err error) {
	start := time.Now()
	defer func() { o.observe(ctx, "add-condition", start, err) }()

	if strings.TrimSpace(nc.Name) == "" {
		return nil, apperrors.NewValidationFailedError("conditionName is required")
	}
	if nc.Type == "" {
		nc.Type = models.ConditionPriorToClosing
	}
	if !nc.Type.Valid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown condition type %q", nc.Type))
	}

	app, err := o.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status.Terminal() {
		return nil, apperrors.NewInvalidStateError(app.ID.String(), string(app.Status), "add-condition")
	}

	now := o.clock.Now()
	c := models.Condition{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		Name:          nc.Name,
		Description:   nc.Description,
		Type:          nc.Type,
		Status:        models.ConditionPending,
		DueDate:       nc.DueDate,
		CreatedAt:     now,
	}
	app.Conditions = append(app.Conditions, c)
	app.UpdatedAt = now

	if err := o.commit(ctx, "add-condition", Changes{
		Application: app,
		Conditions:  []models.Condition{c},
	}); err != nil {
		return nil, err
	}

	o.logger.Info("condition added", map[string]interface{}{
		"applicationId": app.ID.String(),
		"conditionId":   c.ID.String(),
		"conditionType": string(c.Type),
	})
	return &c, nil
}

// UpdateConditionStatus records progress on a condition. When the last
// condition blocking closing clears on a ConditionalApproval application, the
// application moves to ClearToClose in the same write.
func (o *Orchestrator) UpdateConditionStatus(ctx context.Context, applicationID, conditionID uuid.UUID, status models.ConditionStatus) (res *ConditionResult, err error) {
	start := time.Now()
	defer func() { o.observe(ctx, "update-condition", start, err) }()

	if !status.Valid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown condition status %q", status))
	}

	app, err := o.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range app.Conditions {
		if app.Conditions[i].ID == conditionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperrors.NewValidationFailedError(
			fmt.Sprintf("condition %s not found on application %s", conditionID, app.ID)).
			WithMetadata("conditionId", conditionID.String())
	}

	now := o.clock.Now()
	c := &app.Conditions[idx]
	c.Status = status
	if status == models.ConditionSatisfied && c.SatisfiedAt == nil {
		satisfied := now
		c.SatisfiedAt = &satisfied
	}
	app.UpdatedAt = now

	changes := Changes{Application: app, ConditionUpdates: []models.Condition{*c}}
	res = &ConditionResult{Application: app, Condition: *c}

	if app.Status == models.StatusConditionalApproval && !blocksClosing(app.Conditions) {
		entry, err := statemachine.Transition(app, models.StatusClearToClose, clearToCloseReason, models.ActorSystem, now)
		if err != nil {
			return nil, err
		}
		changes.History = []models.StatusHistory{entry}
		res.ClearedToClose = true
	}

	if err := o.commit(ctx, "update-condition", changes); err != nil {
		return nil, err
	}

	o.logger.Info("condition updated", map[string]interface{}{
		"applicationId":  app.ID.String(),
		"conditionId":    conditionID.String(),
		"status":         string(status),
		"clearedToClose": res.ClearedToClose,
	})
	return res, nil
}

func blocksClosing(conditions []models.Condition) bool {
	for _, c := range conditions {
		if c.BlocksClosing() {
			return true
		}
	}
	return false
}
