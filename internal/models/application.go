// internal/models/application.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Application is the aggregate root. Status and the lifecycle timestamps are
// mutated only through statemachine.Transition.
type Application struct {
	ID                uuid.UUID  `json:"id"`
	ApplicationNumber string     `json:"applicationNumber"`
	CustomerID        uuid.UUID  `json:"customerId"`
	PropertyID        uuid.UUID  `json:"propertyId"`
	LoanID            *uuid.UUID `json:"loanId,omitempty"`

	RequestedAmount decimal.Decimal `json:"requestedLoanAmount"`
	DownPayment     decimal.Decimal `json:"downPaymentAmount"`
	TermMonths      int             `json:"requestedTermMonths"`
	Purpose         LoanPurpose     `json:"purpose"`
	Type            ApplicationType `json:"type"`
	Notes           string          `json:"notes,omitempty"`

	LTV                 decimal.NullDecimal `json:"ltv"`
	DTI                 decimal.NullDecimal `json:"dti"`
	OfferedInterestRate decimal.NullDecimal `json:"offeredInterestRate"`
	ApprovedLoanAmount  decimal.NullDecimal `json:"approvedLoanAmount"`

	Status         ApplicationStatus `json:"status"`
	DecisionReason string            `json:"decisionReason,omitempty"`

	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
	SubmittedAt           *time.Time `json:"submittedAt,omitempty"`
	UnderwritingStartedAt *time.Time `json:"underwritingStartedAt,omitempty"`
	DecisionAt            *time.Time `json:"decisionAt,omitempty"`
	ClosedAt              *time.Time `json:"closedAt,omitempty"`

	Underwriting  *Underwriting   `json:"underwriting,omitempty"`
	StatusHistory []StatusHistory `json:"statusHistory,omitempty"`
	Conditions    []Condition     `json:"conditions,omitempty"`
	Documents     []Document      `json:"documents,omitempty"`
}

// Principal is the amount a loan is created for: the approved amount when a
// decision recorded one, otherwise the requested amount.
func (a *Application) Principal() decimal.Decimal {
	if a.ApprovedLoanAmount.Valid {
		return a.ApprovedLoanAmount.Decimal
	}
	return a.RequestedAmount
}

// Summary is the flattened view of an application used by the search index
// and status events.
type Summary struct {
	ID                string            `json:"id"`
	ApplicationNumber string            `json:"applicationNumber"`
	CustomerID        string            `json:"customerId"`
	CustomerName      string            `json:"customerName,omitempty"`
	PropertyID        string            `json:"propertyId"`
	LoanID            string            `json:"loanId,omitempty"`
	Status            ApplicationStatus `json:"status"`
	RequestedAmount   string            `json:"requestedLoanAmount"`
	ApprovedAmount    string            `json:"approvedLoanAmount,omitempty"`
	LTV               string            `json:"ltv,omitempty"`
	DTI               string            `json:"dti,omitempty"`
	Decision          string            `json:"underwritingDecision,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

func (a *Application) Summary() Summary {
	s := Summary{
		ID:                a.ID.String(),
		ApplicationNumber: a.ApplicationNumber,
		CustomerID:        a.CustomerID.String(),
		PropertyID:        a.PropertyID.String(),
		Status:            a.Status,
		RequestedAmount:   a.RequestedAmount.StringFixed(2),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.LoanID != nil {
		s.LoanID = a.LoanID.String()
	}
	if a.ApprovedLoanAmount.Valid {
		s.ApprovedAmount = a.ApprovedLoanAmount.Decimal.StringFixed(2)
	}
	if a.LTV.Valid {
		s.LTV = a.LTV.Decimal.StringFixed(2)
	}
	if a.DTI.Valid {
		s.DTI = a.DTI.Decimal.StringFixed(2)
	}
	if a.Underwriting != nil {
		s.Decision = string(a.Underwriting.Decision)
	}
	return s
}
