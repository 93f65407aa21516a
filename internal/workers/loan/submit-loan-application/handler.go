// internal/workers/loan/submit-loan-application/handler.go
package submitloanapplication

import (
	"context"
	"time"

	"loan-orchestrator/internal/common/camunda"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/validation"
	"loan-orchestrator/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "submit-loan-application"
)

type Service interface {
	SubmitApplication(ctx context.Context, id uuid.UUID, acceptTerms, authorizeCredit bool) (*models.Application, error)
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

	app, err := h.service.SubmitApplication(ctx, id, input.AcceptTerms, input.AuthorizeCreditCheck)
	if err != nil {
		return nil, err
	}

	output := &Output{
		ApplicationID:     app.ID.String(),
		ApplicationStatus: string(app.Status),
	}
	if app.SubmittedAt != nil {
		output.SubmittedAt = app.SubmittedAt.UTC().Format(time.RFC3339)
	}
	return output, nil
}
