// internal/workers/loan/create-loan-application/handler.go
package createloanapplication

import (
	"context"
	"time"

	"loan-orchestrator/internal/common/camunda"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/validation"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/orchestrator"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "create-loan-application"
)

type Service interface {
	CreateApplication(ctx context.Context, req orchestrator.CreateRequest) (*models.Application, error)
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
	customerID, err := validation.ParseUUID("customerId", input.CustomerID)
	if err != nil {
		return nil, err
	}
	propertyID, err := validation.ParseUUID("propertyId", input.PropertyID)
	if err != nil {
		return nil, err
	}

	req := orchestrator.CreateRequest{
		CustomerID:      customerID,
		PropertyID:      propertyID,
		RequestedAmount: input.RequestedLoanAmount,
		DownPayment:     input.DownPaymentAmount,
		TermMonths:      input.RequestedTermMonths,
		Purpose:         models.LoanPurpose(input.Purpose),
		Type:            models.ApplicationType(input.ApplicationType),
		Notes:           input.Notes,
	}
	if req.Purpose == "" {
		req.Purpose = models.PurposePurchase
	}
	if req.Type == "" {
		req.Type = models.TypePurchase
	}

	app, err := h.service.CreateApplication(ctx, req)
	if err != nil {
		return nil, err
	}

	h.logger.Info("loan application created", map[string]interface{}{
		"applicationId":     app.ID.String(),
		"applicationNumber": app.ApplicationNumber,
		"customerId":        input.CustomerID,
	})

	return &Output{
		ApplicationID:     app.ID.String(),
		ApplicationNumber: app.ApplicationNumber,
		ApplicationStatus: string(app.Status),
		CreatedAt:         app.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}
