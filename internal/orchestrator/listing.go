package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/models"

	"github.com/google/uuid"
)

// ApplicationsByCustomer lists a customer's applications, newest first.
func (o *Orchestrator) ApplicationsByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Summary, error) {
	return o.list(ctx, ListFilter{CustomerID: &customerID})
}

// ApplicationsByStatus lists applications currently in status, newest first.
func (o *Orchestrator) ApplicationsByStatus(ctx context.Context, status models.ApplicationStatus) ([]models.Summary, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown application status %q", status))
	}
	return o.list(ctx, ListFilter{Status: status})
}

// list loads the matching applications and names their customers. A customer
// the customer service cannot resolve is listed without a name.
func (o *Orchestrator) list(ctx context.Context, filter ListFilter) ([]models.Summary, error) {
	apps, err := o.store.List(ctx, filter)
	if err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			return nil, err
		}
		return nil, apperrors.NewPersistenceFailedError("list applications", err)
	}

	names := make(map[uuid.UUID]string)
	out := make([]models.Summary, 0, len(apps))
	for i := range apps {
		name, seen := names[apps[i].CustomerID]
		if !seen {
			name = o.customerName(ctx, apps[i].CustomerID)
			names[apps[i].CustomerID] = name
		}
		s := apps[i].Summary()
		s.CustomerName = name
		out = append(out, s)
	}
	return out, nil
}

func (o *Orchestrator) customerName(ctx context.Context, customerID uuid.UUID) string {
	profile, ok := o.customers.GetProfile(ctx, customerID).Get()
	if !ok {
		return ""
	}
	if profile.FullName != "" {
		return profile.FullName
	}
	return strings.TrimSpace(profile.FirstName + " " + profile.LastName)
}
