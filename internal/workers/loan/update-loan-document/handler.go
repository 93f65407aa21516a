// internal/workers/loan/update-loan-document/handler.go
package updateloandocument

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
	TaskType = "update-loan-document"
)

type Service interface {
	UpdateDocumentStatus(ctx context.Context, applicationID, documentID uuid.UUID, status models.DocumentStatus) (*orchestrator.DocumentResult, error)
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
	appID, err := validation.ParseUUID("applicationId", input.ApplicationID)
	if err != nil {
		return nil, err
	}
	documentID, err := validation.ParseUUID("documentId", input.DocumentID)
	if err != nil {
		return nil, err
	}

	res, err := h.service.UpdateDocumentStatus(ctx, appID, documentID, models.DocumentStatus(input.Status))
	if err != nil {
		return nil, err
	}

	h.logger.Info("loan document updated", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"documentId":    input.DocumentID,
		"status":        input.Status,
		"allReceived":   res.AllReceived,
	})

	return &Output{
		ApplicationID:        res.Application.ID.String(),
		DocumentID:           res.Document.ID.String(),
		DocumentStatus:       string(res.Document.Status),
		ApplicationStatus:    string(res.Application.Status),
		AllDocumentsReceived: res.AllReceived,
	}, nil
}
