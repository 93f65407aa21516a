// internal/workers/loan/create-loan-application/models.go
package createloanapplication

import "github.com/shopspring/decimal"

type Input struct {
	CustomerID          string          `json:"customerId"`
	PropertyID          string          `json:"propertyId"`
	RequestedLoanAmount decimal.Decimal `json:"requestedLoanAmount"`
	DownPaymentAmount   decimal.Decimal `json:"downPaymentAmount"`
	RequestedTermMonths int             `json:"requestedTermMonths"`
	Purpose             string          `json:"purpose"`
	ApplicationType     string          `json:"applicationType"`
	Notes               string          `json:"notes"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationNumber string `json:"applicationNumber"`
	ApplicationStatus string `json:"applicationStatus"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}
