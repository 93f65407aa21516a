package orchestrator

import (
	"context"
	"time"

	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/statemachine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// Decision is an underwriter's verdict on an application.
type Decision struct {
	Approved       bool
	ApprovedAmount decimal.NullDecimal
	InterestRate   decimal.NullDecimal
	Reason         string
	Conditions     []string
}

func (d Decision) status() models.ApplicationStatus {
	switch {
	case d.Approved && len(d.Conditions) > 0:
		return models.StatusConditionalApproval
	case d.Approved:
		return models.StatusApproved
	default:
		return models.StatusRejected
	}
}

func (d Decision) classification() models.UnderwritingDecision {
	switch {
	case d.Approved && len(d.Conditions) > 0:
		return models.DecisionApprovedWithConditions
	case d.Approved:
		return models.DecisionApproved
	default:
		return models.DecisionDenied
	}
}

func (o *Orchestrator) RecordDecision(ctx context.Context, applicationID uuid.UUID, d Decision) (app *models.Application, err error) {
	start := time.Now()
	ctx, span := o.obs.StartSpan(ctx, "orchestrator.RecordDecision",
		attribute.String("application.id", applicationID.String()),
		attribute.Bool("decision.approved", d.Approved))
	defer func() {
		o.observe(ctx, "record-decision", start, err)
		span.End()
	}()

	app, err = o.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	now := o.clock.Now()
	to := d.status()

	var conditions []models.Condition
	if d.Approved {
		if d.ApprovedAmount.Valid {
			app.ApprovedLoanAmount = d.ApprovedAmount
		} else {
			app.ApprovedLoanAmount = decimal.NewNullDecimal(app.RequestedAmount)
		}
		app.OfferedInterestRate = d.InterestRate

		for _, name := range d.Conditions {
			conditions = append(conditions, models.Condition{
				ID:            uuid.New(),
				ApplicationID: app.ID,
				Name:          name,
				Type:          models.ConditionPriorToClosing,
				Status:        models.ConditionPending,
				CreatedAt:     now,
			})
		}
	} else {
		app.ApprovedLoanAmount = decimal.NullDecimal{}
		app.OfferedInterestRate = decimal.NullDecimal{}
	}

	entry, err := statemachine.Transition(app, to, d.Reason, models.ActorSystem, now)
	if err != nil {
		return nil, err
	}
	app.DecisionReason = d.Reason
	app.Conditions = append(app.Conditions, conditions...)

	if app.Underwriting != nil {
		completed := now
		app.Underwriting.Decision = d.classification()
		if d.Reason != "" {
			app.Underwriting.Notes = d.Reason
		}
		app.Underwriting.CompletedAt = &completed
	}

	if err := o.commit(ctx, "record-decision", Changes{
		Application:  app,
		Underwriting: app.Underwriting,
		History:      []models.StatusHistory{entry},
		Conditions:   conditions,
	}); err != nil {
		return nil, err
	}

	o.logger.Info("decision recorded", map[string]interface{}{
		"applicationId": app.ID.String(),
		"status":        string(to),
		"conditions":    len(conditions),
	})
	return app, nil
}
