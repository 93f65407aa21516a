// internal/models/notification.go
package models

// StatusEvent is published whenever an application changes status.
type StatusEvent struct {
	EventID           string            `json:"eventId"`
	Type              string            `json:"type"` // "application.status_changed"
	ApplicationID     string            `json:"applicationId"`
	ApplicationNumber string            `json:"applicationNumber"`
	CustomerID        string            `json:"customerId"`
	FromStatus        ApplicationStatus `json:"fromStatus"`
	ToStatus          ApplicationStatus `json:"toStatus"`
	Reason            string            `json:"reason,omitempty"`
	ChangedBy         string            `json:"changedBy"`
	OccurredAt        string            `json:"occurredAt"` // RFC 3339
}
