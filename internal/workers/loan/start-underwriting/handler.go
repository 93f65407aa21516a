// internal/workers/loan/start-underwriting/handler.go
package startunderwriting

import (
	"context"

	"loan-orchestrator/internal/common/camunda"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/validation"
	"loan-orchestrator/internal/orchestrator"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "start-underwriting"
)

type Service interface {
	StartUnderwriting(ctx context.Context, applicationID uuid.UUID) (*orchestrator.UnderwritingResult, error)
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

	res, err := h.service.StartUnderwriting(ctx, id)
	if err != nil {
		return nil, err
	}

	ev := res.Evaluation
	issues := make([]string, len(ev.Issues))
	for i, issue := range ev.Issues {
		issues[i] = string(issue)
	}
	absent := res.Absent
	if absent == nil {
		absent = []string{}
	}

	if len(absent) > 0 {
		h.logger.Warn("underwriting ran with missing inputs", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"absentInputs":  absent,
		})
	}

	return &Output{
		ApplicationID:        res.Application.ID.String(),
		ApplicationStatus:    string(res.Application.Status),
		UnderwritingDecision: string(ev.Decision),
		CreditScore:          ev.CreditScore,
		EstimatedPayment:     ev.EstimatedPayment,
		DTI:                  ev.DTI,
		LTV:                  ev.LTV,
		Issues:               issues,
		AbsentInputs:         absent,
	}, nil
}
