// internal/models/underwriting.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UnderwritingDecision string

const (
	DecisionPending                UnderwritingDecision = "Pending"
	DecisionApproved               UnderwritingDecision = "Approved"
	DecisionApprovedWithConditions UnderwritingDecision = "ApprovedWithConditions"
	DecisionDenied                 UnderwritingDecision = "Denied"
)

const AutomatedUnderwriter = "Automated System"

type Underwriting struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID uuid.UUID `json:"applicationId"`

	CreditScore    *int   `json:"creditScore,omitempty"`
	CreditRating   string `json:"creditRating,omitempty"`
	CreditApproved bool   `json:"creditApproved"`

	GrossMonthlyIncome decimal.NullDecimal `json:"grossMonthlyIncome"`
	YearsEmployed      *int                `json:"yearsEmployed,omitempty"`
	CalculatedDTI      decimal.NullDecimal `json:"calculatedDti"`
	IncomeVerified     bool                `json:"incomeVerified"`
	EmploymentVerified bool                `json:"employmentVerified"`

	AppraisedValue   decimal.NullDecimal `json:"appraisedValue"`
	CalculatedLTV    decimal.NullDecimal `json:"calculatedLtv"`
	PropertyApproved bool                `json:"propertyApproved"`
	TitleClear       bool                `json:"titleClear"`

	Decision        UnderwritingDecision `json:"decision"`
	Notes           string               `json:"decisionNotes,omitempty"`
	UnderwriterName string               `json:"underwriterName"`

	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
