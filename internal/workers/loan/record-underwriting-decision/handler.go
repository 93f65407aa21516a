// internal/workers/loan/record-underwriting-decision/handler.go
package recordunderwritingdecision

import (
	"context"

	"loan-orchestrator/internal/common/camunda"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/validation"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/orchestrator"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "record-underwriting-decision"
)

type Service interface {
	RecordDecision(ctx context.Context, applicationID uuid.UUID, d orchestrator.Decision) (*models.Application, error)
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	id, err := validation.ParseUUID("applicationId", input.ApplicationID)
	if err != nil {
		return nil, err
	}

	app, err := h.service.RecordDecision(ctx, id, orchestrator.Decision{
		Approved:       input.Approved,
		ApprovedAmount: input.ApprovedAmount,
		InterestRate:   input.InterestRate,
		Reason:         input.Reason,
		Conditions:     input.Conditions,
	})
	if err != nil {
		return nil, err
	}

	open := 0
	for _, c := range app.Conditions {
		if c.Status == models.ConditionPending {
			open++
		}
	}

	h.logger.Info("underwriting decision recorded", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"status":        string(app.Status),
		"conditions":    len(input.Conditions),
	})

	return &Output{
		ApplicationID:     app.ID.String(),
		ApplicationStatus: string(app.Status),
		Approved:          input.Approved,
		ApprovedAmount:    app.ApprovedLoanAmount,
		InterestRate:      app.OfferedInterestRate,
		OpenConditions:    open,
	}, nil
}
