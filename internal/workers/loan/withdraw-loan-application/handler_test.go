// internal/workers/loan/withdraw-loan-application/handler_test.go
package withdrawloanapplication

import (
	"context"
	"testing"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appID = "6d7e8f9a-9999-4b0c-8d1e-f2a3b4c5d6e7"

type fakeService struct {
	reason string
	err    error
}

func (f *fakeService) WithdrawApplication(_ context.Context, id uuid.UUID, reason string) (*models.Application, error) {
	f.reason = reason
	if f.err != nil {
		return nil, f.err
	}
	return &models.Application{
		ID:     id,
		Status: models.StatusWithdrawn,
		StatusHistory: []models.StatusHistory{{
			FromStatus: models.StatusSubmitted,
			ToStatus:   models.StatusWithdrawn,
			ChangedAt:  time.Date(2025, 5, 21, 8, 0, 0, 0, time.UTC),
		}},
	}, nil
}

func TestHandler_Execute_Success(t *testing.T) {
	svc := &fakeService{}
	handler := NewHandler(svc, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ApplicationID: appID, Reason: "Found a better rate"})

	require.NoError(t, err)
	assert.Equal(t, &Output{
		ApplicationID:     appID,
		ApplicationStatus: "Withdrawn",
		WithdrawnAt:       "2025-05-21T08:00:00Z",
	}, output)
	assert.Equal(t, "Found a better rate", svc.reason)
}

func TestHandler_Execute_TerminalApplication(t *testing.T) {
	svc := &fakeService{err: apperrors.NewInvalidStateError(appID, "Funded", "withdraw")}
	handler := NewHandler(svc, nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{ApplicationID: appID})

	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.False(t, apperrors.AsStandardError(err).Retryable)
}
