// internal/workers/loan/submit-loan-application/models.go
package submitloanapplication

type Input struct {
	ApplicationID        string `json:"applicationId"`
	AcceptTerms          bool   `json:"acceptTerms"`
	AuthorizeCreditCheck bool   `json:"authorizeCreditCheck"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	SubmittedAt       string `json:"submittedAt,omitempty"`
}
