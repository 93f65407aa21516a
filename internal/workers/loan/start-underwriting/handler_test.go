// internal/workers/loan/start-underwriting/handler_test.go
package startunderwriting

import (
	"context"
	"testing"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/orchestrator"
	"loan-orchestrator/internal/underwriting"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appID = "3e4f5a6b-5555-4c7d-8e9f-a0b1c2d3e4f5"

type fakeService struct {
	result *orchestrator.UnderwritingResult
	err    error
	called uuid.UUID
}

func (f *fakeService) StartUnderwriting(_ context.Context, id uuid.UUID) (*orchestrator.UnderwritingResult, error) {
	f.called = id
	return f.result, f.err
}

func result(ev underwriting.Evaluation, absent []string) *orchestrator.UnderwritingResult {
	return &orchestrator.UnderwritingResult{
		Application: &models.Application{ID: uuid.MustParse(appID), Status: models.StatusUnderwriting},
		Evaluation:  ev,
		Absent:      absent,
	}
}

func TestHandler_Execute_Approved(t *testing.T) {
	score := 700
	svc := &fakeService{result: result(underwriting.Evaluation{
		CreditScore:      &score,
		EstimatedPayment: decimal.NewNullDecimal(decimal.RequireFromString("1896.20")),
		DTI:              decimal.NewNullDecimal(decimal.RequireFromString("21.07")),
		LTV:              decimal.NewNullDecimal(decimal.RequireFromString("75.00")),
		Decision:         models.DecisionApproved,
	}, nil)}
	handler := NewHandler(svc, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ApplicationID: appID})

	require.NoError(t, err)
	assert.Equal(t, appID, svc.called.String())
	assert.Equal(t, "Underwriting", output.ApplicationStatus)
	assert.Equal(t, "Approved", output.UnderwritingDecision)
	assert.Equal(t, 700, *output.CreditScore)
	assert.Equal(t, "21.07", output.DTI.Decimal.StringFixed(2))
	assert.Equal(t, "75.00", output.LTV.Decimal.StringFixed(2))
	assert.Empty(t, output.Issues)
	assert.NotNil(t, output.AbsentInputs)
	assert.Empty(t, output.AbsentInputs)
}

func TestHandler_Execute_ReportsIssuesAndAbsentInputs(t *testing.T) {
	svc := &fakeService{result: result(underwriting.Evaluation{
		Issues:   []underwriting.Issue{underwriting.IssueTitle},
		Decision: models.DecisionApprovedWithConditions,
	}, []string{"title"})}
	handler := NewHandler(svc, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{ApplicationID: appID})

	require.NoError(t, err)
	assert.Equal(t, "ApprovedWithConditions", output.UnderwritingDecision)
	assert.Equal(t, []string{"Title not clear"}, output.Issues)
	assert.Equal(t, []string{"title"}, output.AbsentInputs)
	assert.False(t, output.DTI.Valid)
}

func TestHandler_Execute_NotFound(t *testing.T) {
	svc := &fakeService{err: apperrors.NewApplicationNotFoundError(appID)}
	handler := NewHandler(svc, nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{ApplicationID: appID})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
