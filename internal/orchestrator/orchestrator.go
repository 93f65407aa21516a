// Package orchestrator drives loan applications through their lifecycle. It
// is the only package that talks to the downstream gateways, and it persists
// each operation's changes to one aggregate atomically.
package orchestrator

import (
	"context"
	"errors"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/common/metrics"
	"loan-orchestrator/internal/common/observability"
	"loan-orchestrator/internal/gateway"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/underwriting"

	"github.com/google/uuid"
)

type CustomerGateway interface {
	GetProfile(ctx context.Context, customerID uuid.UUID) gateway.Result[gateway.CustomerProfile]
	GetCredit(ctx context.Context, customerID uuid.UUID) gateway.Result[gateway.CreditReport]
	ListEmployments(ctx context.Context, customerID uuid.UUID) gateway.Result[[]gateway.Employment]
	Exists(ctx context.Context, customerID uuid.UUID) gateway.Result[bool]
}

type PropertyGateway interface {
	GetProperty(ctx context.Context, propertyID uuid.UUID) gateway.Result[gateway.Property]
	GetAppraisal(ctx context.Context, propertyID uuid.UUID) gateway.Result[gateway.Appraisal]
	GetTitle(ctx context.Context, propertyID uuid.UUID) gateway.Result[gateway.TitleSearch]
	Exists(ctx context.Context, propertyID uuid.UUID) gateway.Result[bool]
}

type LoanGateway interface {
	CreateLoan(ctx context.Context, req gateway.CreateLoanRequest) gateway.Result[gateway.Loan]
	FundLoan(ctx context.Context, loanID uuid.UUID, fundingDate, firstPaymentDate time.Time) bool
}

type PaymentGateway interface {
	CreateSchedule(ctx context.Context, req gateway.CreateScheduleRequest) gateway.Result[gateway.PaymentSchedule]
}

// Changes is everything one operation writes for a single application.
type Changes struct {
	Application     *models.Application
	New             bool
	Underwriting    *models.Underwriting
	UnderwritingNew bool
	History         []models.StatusHistory
	Conditions      []models.Condition
	Documents       []models.Document

	// Updates to children that already exist.
	ConditionUpdates []models.Condition
	DocumentUpdates  []models.Document
}

// ListFilter selects applications by customer, status, or both. Results are
// newest first and carry no children.
type ListFilter struct {
	CustomerID *uuid.UUID
	Status     models.ApplicationStatus
}

// Store persists the Application aggregate. Load returns an
// APPLICATION_NOT_FOUND error for unknown ids; Save is atomic.
type Store interface {
	Load(ctx context.Context, id uuid.UUID) (*models.Application, error)
	Save(ctx context.Context, changes Changes) error
	NextSequence(ctx context.Context, year int) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]models.Application, error)
}

// ChangeListener observes committed changes. Listener errors are logged and
// never fail the operation.
type ChangeListener interface {
	ApplicationChanged(ctx context.Context, app *models.Application, history []models.StatusHistory) error
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type Dependencies struct {
	Store      Store
	Customers  CustomerGateway
	Properties PropertyGateway
	Loans      LoanGateway
	Payments   PaymentGateway
	Engine     *underwriting.Engine
	Clock      Clock
	Listeners  []ChangeListener
	Obs        *observability.Observability
}

type Orchestrator struct {
	store      Store
	customers  CustomerGateway
	properties PropertyGateway
	loans      LoanGateway
	payments   PaymentGateway
	engine     *underwriting.Engine
	clock      Clock
	listeners  []ChangeListener
	obs        *observability.Observability
	logger     logger.Logger
}

func New(deps Dependencies, log logger.Logger) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = SystemClock{}
	}
	if deps.Engine == nil {
		deps.Engine = underwriting.NewEngine(underwriting.DefaultPolicy())
	}
	return &Orchestrator{
		store:      deps.Store,
		customers:  deps.Customers,
		properties: deps.Properties,
		loans:      deps.Loans,
		payments:   deps.Payments,
		engine:     deps.Engine,
		clock:      deps.Clock,
		listeners:  deps.Listeners,
		obs:        deps.Obs,
		logger:     log.Named("orchestrator"),
	}
}

func (o *Orchestrator) load(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	app, err := o.store.Load(ctx, id)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			return nil, err
		}
		return nil, apperrors.NewPersistenceFailedError("load", err)
	}
	return app, nil
}

// persistTimeout bounds writes made on a detached context.
const persistTimeout = 30 * time.Second

// persistContext is used for the final write of an operation whose external
// effects have already happened, so the caller's deadline cannot strand them.
func persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

// commit saves changes and then notifies listeners.
func (o *Orchestrator) commit(ctx context.Context, operation string, changes Changes) error {
	if err := o.store.Save(ctx, changes); err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			return err
		}
		return apperrors.NewPersistenceFailedError(operation, err)
	}

	for _, entry := range changes.History {
		metrics.StatusTransitions.WithLabelValues(string(entry.FromStatus), string(entry.ToStatus)).Inc()
	}

	for _, l := range o.listeners {
		if err := l.ApplicationChanged(ctx, changes.Application, changes.History); err != nil {
			o.logger.Warn("change listener failed", map[string]interface{}{
				"applicationId": changes.Application.ID.String(),
				"operation":     operation,
				"error":         err.Error(),
			})
		}
	}
	return nil
}

func (o *Orchestrator) observe(ctx context.Context, operation string, start time.Time, err error) {
	o.obs.RecordOperation(ctx, operation, time.Since(start), err)
}

// GetApplication returns the aggregate with its children.
func (o *Orchestrator) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return o.load(ctx, id)
}
