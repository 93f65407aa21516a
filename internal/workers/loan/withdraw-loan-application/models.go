// internal/workers/loan/withdraw-loan-application/models.go
package withdrawloanapplication

type Input struct {
	ApplicationID string `json:"applicationId"`
	Reason        string `json:"reason"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	WithdrawnAt       string `json:"withdrawnAt,omitempty"`
}
