// internal/models/history.go
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActorSystem   = "System"
	ActorBorrower = "Borrower"
)

// StatusHistory is append-only; rows are never updated or deleted.
type StatusHistory struct {
	ID            uuid.UUID         `json:"id"`
	ApplicationID uuid.UUID         `json:"applicationId"`
	FromStatus    ApplicationStatus `json:"fromStatus"`
	ToStatus      ApplicationStatus `json:"toStatus"`
	Reason        string            `json:"reason,omitempty"`
	ChangedBy     string            `json:"changedBy"`
	ChangedAt     time.Time         `json:"changedAt"`
}
