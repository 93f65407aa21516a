// internal/workers/loan/add-loan-condition/handler.go
package addloancondition

import (
	"context"
	"time"

	"loan-orchestrator/internal/common/camunda"
	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/validation"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/orchestrator"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "add-loan-condition"
)

type Service interface {
	AddCondition(ctx context.Context, applicationID uuid.UUID, nc orchestrator.NewCondition) (*models.Condition, error)
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

	nc := orchestrator.NewCondition{
		Name:        input.ConditionName,
		Description: input.Description,
		Type:        models.ConditionType(input.ConditionType),
	}
	if input.DueDate != "" {
		due, err := time.Parse(time.DateOnly, input.DueDate)
		if err != nil {
			return nil, apperrors.NewValidationFailedError("dueDate must be YYYY-MM-DD").
				WithMetadata("field", "dueDate")
		}
		nc.DueDate = &due
	}

	c, err := h.service.AddCondition(ctx, id, nc)
	if err != nil {
		return nil, err
	}

	h.logger.Info("loan condition added", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"conditionId":   c.ID.String(),
	})

	return &Output{
		ApplicationID:   input.ApplicationID,
		ConditionID:     c.ID.String(),
		ConditionType:   string(c.Type),
		ConditionStatus: string(c.Status),
	}, nil
}
