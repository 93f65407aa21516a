// internal/workers/loan/fund-loan/handler.go
package fundloan

import (
	"context"
	"fmt"

	"loan-orchestrator/internal/common/camunda"
	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/validation"
	"loan-orchestrator/internal/orchestrator"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "fund-loan"
)

type Service interface {
	FundLoan(ctx context.Context, applicationID uuid.UUID) (*orchestrator.FundingResult, error)
}

type Handler struct {
	service Service
	runner  *camunda.Runner
	logger  logger.Logger
}

func NewHandler(service Service, runner *camunda.Runner, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		runner:  runner,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Handle(client, job, func(ctx context.Context, variables []byte) (interface{}, error) {
		input, err := camunda.Decode[Input](variables)
		if err != nil {
			return nil, err
		}
		return h.Execute(ctx, input)
	})
}

// Execute completes the job even when funding or scheduling degraded; the
// process reads degradedSteps to route manual follow-up.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	id, err := validation.ParseUUID("applicationId", input.ApplicationID)
	if err != nil {
		return nil, err
	}

	res, err := h.service.FundLoan(ctx, id)
	if err != nil {
		return nil, err
	}

	degraded := make([]string, 0, len(res.Degraded))
	for _, d := range res.Degraded {
		degraded = append(degraded, degradedStep(d))
	}

	return &Output{
		ApplicationID:     res.Application.ID.String(),
		ApplicationStatus: string(res.Application.Status),
		LoanID:            res.Loan.ID.String(),
		LoanNumber:        res.Loan.LoanNumber,
		MonthlyPayment:    res.Loan.MonthlyPayment,
		Funded:            res.Funded,
		ScheduleCreated:   res.ScheduleCreated,
		DegradedSteps:     degraded,
	}, nil
}

func degradedStep(err error) string {
	stdErr := apperrors.AsStandardError(err)
	if op, ok := stdErr.Metadata["operation"].(string); ok {
		return op
	}
	return fmt.Sprint(stdErr.Code)
}
