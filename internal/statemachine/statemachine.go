// Package statemachine owns application status changes. Every change goes
// through Transition, which appends exactly one StatusHistory entry.
package statemachine

import (
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/models"

	"github.com/google/uuid"
)

// Transition moves app to status to, stamping the timestamp that status
// produces, and returns the history entry describing the move. A move into
// Funded from anything other than Approved or ClearToClose fails with
// INVALID_APPLICATION_STATE and leaves app untouched.
func Transition(app *models.Application, to models.ApplicationStatus, reason, actor string, now time.Time) (models.StatusHistory, error) {
	if !to.Valid() {
		return models.StatusHistory{}, apperrors.NewValidationFailedError("unknown status: " + string(to))
	}
	if to == models.StatusFunded && !app.Status.Fundable() {
		return models.StatusHistory{}, apperrors.NewInvalidStateError(app.ID.String(), string(app.Status), "fund")
	}

	now = now.UTC()
	entry := models.StatusHistory{
		ID:            uuid.New(),
		ApplicationID: app.ID,
		FromStatus:    app.Status,
		ToStatus:      to,
		Reason:        reason,
		ChangedBy:     actor,
		ChangedAt:     now,
	}

	app.Status = to
	app.UpdatedAt = now
	stamp(app, to, now)
	app.StatusHistory = append(app.StatusHistory, entry)

	return entry, nil
}

// stamp sets the lifecycle timestamp owned by status. Timestamps that are
// already set are never moved.
func stamp(app *models.Application, status models.ApplicationStatus, now time.Time) {
	var field **time.Time
	switch status {
	case models.StatusSubmitted:
		field = &app.SubmittedAt
	case models.StatusUnderwriting:
		field = &app.UnderwritingStartedAt
	case models.StatusApproved, models.StatusConditionalApproval, models.StatusRejected:
		field = &app.DecisionAt
	case models.StatusFunded, models.StatusClosed:
		field = &app.ClosedAt
	default:
		return
	}
	if *field == nil {
		t := now
		*field = &t
	}
}
