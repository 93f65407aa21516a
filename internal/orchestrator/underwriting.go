package orchestrator

import (
	"context"
	"fmt"
	"time"

	"loan-orchestrator/internal/common/metrics"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/statemachine"
	"loan-orchestrator/internal/underwriting"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

type UnderwritingResult struct {
	Application  *models.Application
	Underwriting *models.Underwriting
	Evaluation   underwriting.Evaluation
	Absent       []string
}

// StartUnderwriting gathers the six underwriting inputs concurrently, runs the
// decision engine on whatever came back and moves the application to
// Underwriting. Missing inputs degrade the decision; they never fail it.
func (o *Orchestrator) StartUnderwriting(ctx context.Context, applicationID uuid.UUID) (res *UnderwritingResult, err error) {
	start := time.Now()
	ctx, span := o.obs.StartSpan(ctx, "orchestrator.StartUnderwriting",
		attribute.String("application.id", applicationID.String()))
	defer func() {
		o.observe(ctx, "start-underwriting", start, err)
		span.End()
	}()

	app, err := o.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	snap := o.gather(ctx, app)
	absent := snap.AbsentInputs()
	for _, input := range absent {
		o.obs.RecordAbsentInput(ctx, input)
	}

	ev := o.engine.Evaluate(underwriting.Terms{
		RequestedAmount: app.RequestedAmount,
		TermMonths:      app.TermMonths,
	}, snap)

	now := o.clock.Now()
	record, isNew := applyEvaluation(app, ev, now)

	entry, err := statemachine.Transition(app, models.StatusUnderwriting,
		fmt.Sprintf("Automated underwriting completed: %s", ev.Decision), models.ActorSystem, now)
	if err != nil {
		return nil, err
	}
	app.LTV = ev.LTV
	app.DTI = ev.DTI

	persistCtx, cancel := persistContext(ctx)
	defer cancel()
	if err := o.commit(persistCtx, "start-underwriting", Changes{
		Application:     app,
		Underwriting:    record,
		UnderwritingNew: isNew,
		History:         []models.StatusHistory{entry},
	}); err != nil {
		return nil, err
	}

	metrics.UnderwritingDecisions.WithLabelValues(string(ev.Decision)).Inc()
	o.logger.Info("underwriting completed", map[string]interface{}{
		"applicationId": app.ID.String(),
		"decision":      string(ev.Decision),
		"issues":        len(ev.Issues),
		"absentInputs":  absent,
	})

	return &UnderwritingResult{
		Application:  app,
		Underwriting: record,
		Evaluation:   ev,
		Absent:       absent,
	}, nil
}

// gather runs the six reads concurrently and joins all of them. The reads run
// on a context detached from the caller so an abandoned request does not
// cancel calls already in flight; each call is bounded by its gateway timeout.
func (o *Orchestrator) gather(ctx context.Context, app *models.Application) underwriting.Snapshot {
	detached := context.WithoutCancel(ctx)
	var snap underwriting.Snapshot
	var g errgroup.Group

	g.Go(func() error {
		snap.Profile = o.customers.GetProfile(detached, app.CustomerID)
		return nil
	})
	g.Go(func() error {
		snap.Credit = o.customers.GetCredit(detached, app.CustomerID)
		return nil
	})
	g.Go(func() error {
		snap.Employments = o.customers.ListEmployments(detached, app.CustomerID)
		return nil
	})
	g.Go(func() error {
		snap.Property = o.properties.GetProperty(detached, app.PropertyID)
		return nil
	})
	g.Go(func() error {
		snap.Appraisal = o.properties.GetAppraisal(detached, app.PropertyID)
		return nil
	})
	g.Go(func() error {
		snap.Title = o.properties.GetTitle(detached, app.PropertyID)
		return nil
	})

	_ = g.Wait()
	return snap
}

// applyEvaluation copies ev onto the application's underwriting record,
// creating it on first evaluation.
func applyEvaluation(app *models.Application, ev underwriting.Evaluation, now time.Time) (*models.Underwriting, bool) {
	record := app.Underwriting
	isNew := record == nil
	if isNew {
		record = &models.Underwriting{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			CreatedAt:     now,
		}
	}

	record.CreditScore = ev.CreditScore
	record.CreditRating = ev.CreditRating
	record.CreditApproved = ev.CreditApproved
	record.GrossMonthlyIncome = ev.GrossMonthlyIncome
	record.YearsEmployed = ev.YearsEmployed
	record.CalculatedDTI = ev.DTI
	record.IncomeVerified = ev.IncomeVerified
	record.EmploymentVerified = ev.EmploymentVerified
	record.AppraisedValue = ev.ValueUsed
	record.CalculatedLTV = ev.LTV
	record.PropertyApproved = ev.PropertyApproved
	record.TitleClear = ev.TitleClear
	record.Decision = ev.Decision
	record.Notes = ev.Notes()
	record.UnderwriterName = models.AutomatedUnderwriter

	app.Underwriting = record
	return record, isNew
}
