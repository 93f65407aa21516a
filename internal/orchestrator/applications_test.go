package orchestrator

import (
	"context"
	"errors"
	"testing"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRequest() CreateRequest {
	return CreateRequest{
		CustomerID:      uuid.New(),
		PropertyID:      uuid.New(),
		RequestedAmount: dec("300000"),
		DownPayment:     dec("60000"),
		TermMonths:      360,
		Purpose:         models.PurposePurchase,
		Type:            models.TypePurchase,
	}
}

func TestCreateApplication(t *testing.T) {
	h := newHarness(t)

	first, err := h.orch.CreateApplication(context.Background(), createRequest())
	require.NoError(t, err)
	second, err := h.orch.CreateApplication(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, "APP-2025-000001", first.ApplicationNumber)
	assert.Equal(t, "APP-2025-000002", second.ApplicationNumber)
	assert.Equal(t, models.StatusDraft, first.Status)
	assert.Empty(t, first.StatusHistory)
	assert.False(t, first.LTV.Valid)
	assert.Len(t, first.Documents, len(models.RequiredDocuments))
	for _, d := range first.Documents {
		assert.Equal(t, models.DocumentRequired, d.Status)
		assert.Equal(t, first.ID, d.ApplicationID)
	}

	require.Len(t, h.store.saves, 2)
	assert.True(t, h.store.saves[0].New)
	assert.Len(t, h.store.saves[0].Documents, 5)
}

func TestCreateApplication_Validation(t *testing.T) {
	h := newHarness(t)

	bad := createRequest()
	bad.RequestedAmount = dec("0")
	bad.TermMonths = 0
	_, err := h.orch.CreateApplication(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Contains(t, err.Error(), "requestedLoanAmount must be positive")
	assert.Contains(t, err.Error(), "requestedTermMonths must be positive")

	h.customers.exists = false
	_, err = h.orch.CreateApplication(context.Background(), createRequest())
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	h.customers.exists = true
	h.properties.exists = false
	_, err = h.orch.CreateApplication(context.Background(), createRequest())
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Empty(t, h.store.saves)
}

func TestCreateApplication_UnreachableServiceIsRetryable(t *testing.T) {
	h := newHarness(t)
	h.customers.unreachable = true

	_, err := h.orch.CreateApplication(context.Background(), createRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDependencyFailure))
	assert.True(t, apperrors.AsStandardError(err).Retryable)

	h.customers.unreachable = false
	h.properties.unreachable = true
	_, err = h.orch.CreateApplication(context.Background(), createRequest())
	assert.True(t, errors.Is(err, apperrors.ErrDependencyFailure))
	assert.Empty(t, h.store.saves)
}

func TestSubmitApplication(t *testing.T) {
	app := application(models.StatusDraft)
	h := newHarness(t, app)

	_, err := h.orch.SubmitApplication(context.Background(), app.ID, true, false)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	got, err := h.orch.SubmitApplication(context.Background(), app.ID, true, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, got.Status)
	require.NotNil(t, got.SubmittedAt)
	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, models.StatusDraft, got.StatusHistory[0].FromStatus)
	assert.Equal(t, models.ActorBorrower, got.StatusHistory[0].ChangedBy)

	_, err = h.orch.SubmitApplication(context.Background(), app.ID, true, true)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))
}

func TestWithdrawApplication(t *testing.T) {
	app := application(models.StatusInReview)
	h := newHarness(t, app)

	got, err := h.orch.WithdrawApplication(context.Background(), app.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWithdrawn, got.Status)
	assert.Equal(t, "Withdrawn by borrower", got.StatusHistory[0].Reason)

	_, err = h.orch.WithdrawApplication(context.Background(), app.ID, "changed my mind")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))
}

func TestUpdateStatus(t *testing.T) {
	app := application(models.StatusSubmitted)
	h := newHarness(t, app)

	got, err := h.orch.UpdateStatus(context.Background(), app.ID, models.StatusDocumentsRequested, "Need bank statements")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDocumentsRequested, got.Status)
	assert.Equal(t, models.ActorSystem, got.StatusHistory[0].ChangedBy)

	_, err = h.orch.UpdateStatus(context.Background(), app.ID, models.StatusFunded, "")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))

	_, err = h.orch.UpdateStatus(context.Background(), app.ID, models.ApplicationStatus("Archived"), "")
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

	assert.Len(t, h.store.get(app.ID).StatusHistory, 1)
}

func TestGetApplication(t *testing.T) {
	app := application(models.StatusDraft)
	h := newHarness(t, app)

	got, err := h.orch.GetApplication(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ApplicationNumber, got.ApplicationNumber)

	_, err = h.orch.GetApplication(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
