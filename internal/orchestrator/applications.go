package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/gateway"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/statemachine"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultWithdrawReason = "Withdrawn by borrower"

type CreateRequest struct {
	CustomerID      uuid.UUID
	PropertyID      uuid.UUID
	RequestedAmount decimal.Decimal
	DownPayment     decimal.Decimal
	TermMonths      int
	Purpose         models.LoanPurpose
	Type            models.ApplicationType
	Notes           string
}

func (r CreateRequest) validate() error {
	var problems []string
	if r.CustomerID == uuid.Nil {
		problems = append(problems, "customerId is required")
	}
	if r.PropertyID == uuid.Nil {
		problems = append(problems, "propertyId is required")
	}
	if !r.RequestedAmount.IsPositive() {
		problems = append(problems, "requestedLoanAmount must be positive")
	}
	if r.DownPayment.IsNegative() {
		problems = append(problems, "downPaymentAmount must not be negative")
	}
	if r.TermMonths <= 0 {
		problems = append(problems, "requestedTermMonths must be positive")
	}
	if len(problems) > 0 {
		return apperrors.NewValidationFailedError(strings.Join(problems, "; "))
	}
	return nil
}

// CreateApplication opens a Draft application with the standard document
// checklist. The customer and property must exist downstream.
func (o *Orchestrator) CreateApplication(ctx context.Context, req CreateRequest) (app *models.Application, err error) {
	start := time.Now()
	defer func() { o.observe(ctx, "create-application", start, err) }()

	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := requireExisting(o.customers.Exists(ctx, req.CustomerID), "customer-service", "customer", req.CustomerID); err != nil {
		return nil, err
	}
	if err := requireExisting(o.properties.Exists(ctx, req.PropertyID), "property-service", "property", req.PropertyID); err != nil {
		return nil, err
	}

	now := o.clock.Now().UTC()
	seq, err := o.store.NextSequence(ctx, now.Year())
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError("next-sequence", err)
	}

	app = &models.Application{
		ID:                uuid.New(),
		ApplicationNumber: ApplicationNumber(now.Year(), seq),
		CustomerID:        req.CustomerID,
		PropertyID:        req.PropertyID,
		RequestedAmount:   req.RequestedAmount,
		DownPayment:       req.DownPayment,
		TermMonths:        req.TermMonths,
		Purpose:           req.Purpose,
		Type:              req.Type,
		Notes:             req.Notes,
		Status:            models.StatusDraft,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for _, doc := range models.RequiredDocuments {
		requested := now
		app.Documents = append(app.Documents, models.Document{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			Name:          doc.Name,
			Type:          doc.Type,
			Status:        models.DocumentRequired,
			RequestedAt:   &requested,
		})
	}

	if err := o.commit(ctx, "create-application", Changes{
		Application: app,
		New:         true,
		Documents:   app.Documents,
	}); err != nil {
		return nil, err
	}

	o.logger.Info("application created", map[string]interface{}{
		"applicationId":     app.ID.String(),
		"applicationNumber": app.ApplicationNumber,
	})
	return app, nil
}

// requireExisting rejects a missing resource. An unreachable service is a
// retryable dependency failure rather than bad input.
func requireExisting(res gateway.Result[bool], service, kind string, id uuid.UUID) error {
	found, ok := res.Get()
	if !ok {
		return apperrors.NewDependencyFailureError(service, "exists").WithMetadata(kind+"Id", id.String())
	}
	if !found {
		return apperrors.NewValidationFailedError(fmt.Sprintf("%s %s not found", kind, id))
	}
	return nil
}

// ApplicationNumber formats the human readable number, e.g. APP-2025-000042.
func ApplicationNumber(year int, seq int64) string {
	return fmt.Sprintf("APP-%d-%06d", year, seq)
}

// SubmitApplication moves a Draft application to Submitted once the borrower
// has accepted the terms and authorized the credit check.
func (o *Orchestrator) SubmitApplication(ctx context.Context, id uuid.UUID, acceptTerms, authorizeCredit bool) (app *models.Application, err error) {
	start := time.Now()
	defer func() { o.observe(ctx, "submit-application", start, err) }()

	if !acceptTerms || !authorizeCredit {
		return nil, apperrors.NewValidationFailedError("terms must be accepted and credit check authorized")
	}

	app, err = o.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusDraft {
		return nil, apperrors.NewInvalidStateError(app.ID.String(), string(app.Status), "submit")
	}

	return o.move(ctx, "submit-application", app, models.StatusSubmitted, "Application submitted by borrower", models.ActorBorrower)
}

func (o *Orchestrator) WithdrawApplication(ctx context.Context, id uuid.UUID, reason string) (app *models.Application, err error) {
	start := time.Now()
	defer func() { o.observe(ctx, "withdraw-application", start, err) }()

	app, err = o.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status.Terminal() {
		return nil, apperrors.NewInvalidStateError(app.ID.String(), string(app.Status), "withdraw")
	}
	if strings.TrimSpace(reason) == "" {
		reason = defaultWithdrawReason
	}

	return o.move(ctx, "withdraw-application", app, models.StatusWithdrawn, reason, models.ActorBorrower)
}

// UpdateStatus is the administrative transition. Beyond the funding guard it
// does not restrict which status an application may move to.
func (o *Orchestrator) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus, reason string) (app *models.Application, err error) {
	start := time.Now()
	defer func() { o.observe(ctx, "update-status", start, err) }()

	app, err = o.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.move(ctx, "update-status", app, status, reason, models.ActorSystem)
}

func (o *Orchestrator) move(ctx context.Context, operation string, app *models.Application, to models.ApplicationStatus, reason, actor string) (*models.Application, error) {
	entry, err := statemachine.Transition(app, to, reason, actor, o.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := o.commit(ctx, operation, Changes{
		Application: app,
		History:     []models.StatusHistory{entry},
	}); err != nil {
		return nil, err
	}

	o.logger.Info("application status changed", map[string]interface{}{
		"applicationId": app.ID.String(),
		"from":          string(entry.FromStatus),
		"to":            string(entry.ToStatus),
		"changedBy":     actor,
	})
	return app, nil
}
