package orchestrator

import (
	"context"
	"fmt"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/metrics"
	"loan-orchestrator/internal/gateway"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/statemachine"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	stepCreateLoan     = "create-loan"
	stepFundLoan       = "fund-loan"
	stepCreateSchedule = "create-schedule"
)

type FundingResult struct {
	Application     *models.Application
	Loan            gateway.Loan
	Funded          bool
	ScheduleCreated bool
	// Degraded holds a DEPENDENCY_DEGRADED error per best-effort step that failed.
	Degraded []error
}

// FirstPaymentDate is the first day of the month two months after funding.
func FirstPaymentDate(funding time.Time) time.Time {
	return time.Date(funding.Year(), funding.Month()+2, 1, 0, 0, 0, 0, funding.Location())
}

// FundLoan runs create loan, fund loan and create payment schedule in order.
// Only loan creation is fatal; once it succeeds the application is Funded even
// if the later steps fail.
func (o *Orchestrator) FundLoan(ctx context.Context, applicationID uuid.UUID) (res *FundingResult, err error) {
	start := time.Now()
	ctx, span := o.obs.StartSpan(ctx, "orchestrator.FundLoan",
		attribute.String("application.id", applicationID.String()))
	defer func() {
		o.observe(ctx, "fund-loan", start, err)
		span.End()
	}()

	app, err := o.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.Status.Fundable() {
		return nil, apperrors.NewInvalidStateError(app.ID.String(), string(app.Status), "fund")
	}

	log := o.logger.WithFields(map[string]interface{}{"applicationId": app.ID.String()})
	detached := context.WithoutCancel(ctx)

	rate := o.engine.Policy().ReferenceRate
	if app.OfferedInterestRate.Valid {
		rate = app.OfferedInterestRate.Decimal
	}
	downPayment := app.DownPayment

	loan, ok := o.loans.CreateLoan(detached, gateway.CreateLoanRequest{
		CustomerID:      app.CustomerID,
		PropertyID:      app.PropertyID,
		PrincipalAmount: app.Principal(),
		InterestRate:    rate,
		TermMonths:      app.TermMonths,
		LoanType:        gateway.LoanTypeConventional,
		DownPayment:     &downPayment,
	}).Get()
	if !ok {
		metrics.FundingSteps.WithLabelValues(stepCreateLoan, "failed").Inc()
		return nil, apperrors.NewDependencyFailureError("loan-service", stepCreateLoan).
			WithMetadata("applicationId", app.ID.String())
	}
	metrics.FundingSteps.WithLabelValues(stepCreateLoan, "ok").Inc()
	log.Info("loan created", map[string]interface{}{"loanId": loan.ID.String(), "loanNumber": loan.LoanNumber})

	result := &FundingResult{Application: app, Loan: loan}

	fundingDate := o.clock.Now()
	result.Funded = o.loans.FundLoan(detached, loan.ID, fundingDate, FirstPaymentDate(fundingDate))
	if !result.Funded {
		result.Degraded = append(result.Degraded, o.degraded(log, "loan-service", stepFundLoan, loan))
	} else {
		metrics.FundingSteps.WithLabelValues(stepFundLoan, "ok").Inc()
	}

	result.ScheduleCreated = o.payments.CreateSchedule(detached, gateway.CreateScheduleRequest{
		LoanID:               loan.ID,
		CustomerID:           app.CustomerID,
		IsAutoPay:            true,
		PaymentDayOfMonth:    1,
		RegularPaymentAmount: loan.MonthlyPayment,
	}).Present()
	if !result.ScheduleCreated {
		result.Degraded = append(result.Degraded, o.degraded(log, "payment-service", stepCreateSchedule, loan))
	} else {
		metrics.FundingSteps.WithLabelValues(stepCreateSchedule, "ok").Inc()
	}

	loanID := loan.ID
	app.LoanID = &loanID
	entry, err := statemachine.Transition(app, models.StatusFunded,
		fmt.Sprintf("Loan %s created and funded", loan.LoanNumber), models.ActorSystem, o.clock.Now())
	if err != nil {
		return nil, err
	}

	persistCtx, cancel := persistContext(ctx)
	defer cancel()
	if err := o.commit(persistCtx, "fund-loan", Changes{
		Application: app,
		History:     []models.StatusHistory{entry},
	}); err != nil {
		// The loan exists downstream but is not linked locally. No compensation
		// is attempted; the loan id is logged for manual reconciliation.
		log.Error("loan created but application not persisted", map[string]interface{}{
			"loanId":     loan.ID.String(),
			"loanNumber": loan.LoanNumber,
			"error":      err.Error(),
		})
		return nil, err
	}

	log.Info("application funded", map[string]interface{}{
		"loanId":          loan.ID.String(),
		"funded":          result.Funded,
		"scheduleCreated": result.ScheduleCreated,
	})
	return result, nil
}

func (o *Orchestrator) degraded(log logger.Logger, service, step string, loan gateway.Loan) error {
	metrics.FundingSteps.WithLabelValues(step, "degraded").Inc()
	err := apperrors.NewDependencyDegradedError(service, step).WithMetadata("loanId", loan.ID.String())
	log.Warn("funding step failed, continuing", map[string]interface{}{
		"step":   step,
		"loanId": loan.ID.String(),
		"code":   string(err.Code),
	})
	return err
}
