// internal/workers/loan/request-loan-document/handler.go
package requestloandocument

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
	"github.com/google/uuid"
)

const (
	TaskType = "request-loan-document"
)

type Service interface {
	AddDocument(ctx context.Context, applicationID uuid.UUID, nd orchestrator.NewDocument) (*models.Document, error)
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

	d, err := h.service.AddDocument(ctx, id, orchestrator.NewDocument{
		Name:  input.DocumentName,
		Type:  models.DocumentType(input.DocumentType),
		Notes: input.Notes,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("loan document requested", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"documentId":    d.ID.String(),
		"documentType":  string(d.Type),
	})

	output := &Output{
		ApplicationID:  input.ApplicationID,
		DocumentID:     d.ID.String(),
		DocumentType:   string(d.Type),
		DocumentStatus: string(d.Status),
	}
	if d.RequestedAt != nil {
		output.RequestedAt = d.RequestedAt.UTC().Format(time.RFC3339)
	}
	return output, nil
}
