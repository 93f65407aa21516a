// internal/workers/loan/start-underwriting/models.go
package startunderwriting

import "github.com/shopspring/decimal"

type Input struct {
	ApplicationID string `json:"applicationId"`
}

type Output struct {
	ApplicationID        string              `json:"applicationId"`
	ApplicationStatus    string              `json:"applicationStatus"`
	UnderwritingDecision string              `json:"underwritingDecision"`
	CreditScore          *int                `json:"creditScore"`
	EstimatedPayment     decimal.NullDecimal `json:"estimatedPayment"`
	DTI                  decimal.NullDecimal `json:"dti"`
	LTV                  decimal.NullDecimal `json:"ltv"`
	Issues               []string            `json:"issues"`
	AbsentInputs         []string            `json:"absentInputs"`
}
