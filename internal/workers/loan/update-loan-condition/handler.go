// internal/workers/loan/update-loan-condition/handler.go
package updateloancondition

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
	TaskType = "update-loan-condition"
)

type Service interface {
	UpdateConditionStatus(ctx context.Context, applicationID, conditionID uuid.UUID, status models.ConditionStatus) (*orchestrator.ConditionResult, error)
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

// Execute applies the new condition status. ClearToClose in the output tells
// the process that this update released the application for closing.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	appID, err := validation.ParseUUID("applicationId", input.ApplicationID)
	if err != nil {
		return nil, err
	}
	conditionID, err := validation.ParseUUID("conditionId", input.ConditionID)
	if err != nil {
		return nil, err
	}

	res, err := h.service.UpdateConditionStatus(ctx, appID, conditionID, models.ConditionStatus(input.Status))
	if err != nil {
		return nil, err
	}

	h.logger.Info("loan condition updated", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"conditionId":   input.ConditionID,
		"status":        input.Status,
		"clearToClose":  res.ClearedToClose,
	})

	return &Output{
		ApplicationID:     res.Application.ID.String(),
		ConditionID:       res.Condition.ID.String(),
		ConditionStatus:   string(res.Condition.Status),
		ApplicationStatus: string(res.Application.Status),
		ClearToClose:      res.ClearedToClose,
	}, nil
}
