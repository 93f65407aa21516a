// internal/models/condition.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type ConditionType string

const (
	ConditionPriorToApproval ConditionType = "PriorToApproval"
	ConditionPriorToClosing  ConditionType = "PriorToClosing"
	ConditionPriorToFunding  ConditionType = "PriorToFunding"
	ConditionPostClosing     ConditionType = "PostClosing"
)

type ConditionStatus string

const (
	ConditionPending    ConditionStatus = "Pending"
	ConditionInProgress ConditionStatus = "InProgress"
	ConditionSatisfied  ConditionStatus = "Satisfied"
	ConditionWaived     ConditionStatus = "Waived"
	ConditionNotMet     ConditionStatus = "NotMet"
)

type Condition struct {
	ID            uuid.UUID       `json:"id"`
	ApplicationID uuid.UUID       `json:"applicationId"`
	Name          string          `json:"conditionName"`
	Description   string          `json:"description,omitempty"`
	Type          ConditionType   `json:"conditionType"`
	Status        ConditionStatus `json:"status"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	SatisfiedAt   *time.Time      `json:"satisfiedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Cleared reports whether the condition no longer stands in the way.
func (c Condition) Cleared() bool {
	return c.Status == ConditionSatisfied || c.Status == ConditionWaived
}

// BlocksClosing is true for every condition that must clear before closing.
func (c Condition) BlocksClosing() bool {
	return c.Type != ConditionPostClosing && !c.Cleared()
}

func (t ConditionType) Valid() bool {
	switch t {
	case ConditionPriorToApproval, ConditionPriorToClosing, ConditionPriorToFunding, ConditionPostClosing:
		return true
	}
	return false
}

func (s ConditionStatus) Valid() bool {
	switch s {
	case ConditionPending, ConditionInProgress, ConditionSatisfied, ConditionWaived, ConditionNotMet:
		return true
	}
	return false
}

type DocumentType string

const (
	DocumentDriversLicense    DocumentType = "DriversLicense"
	DocumentPayStubs          DocumentType = "PayStubs"
	DocumentW2Forms           DocumentType = "W2Forms"
	DocumentBankStatements    DocumentType = "BankStatements"
	DocumentTaxReturns        DocumentType = "TaxReturns"
	DocumentPurchaseAgreement DocumentType = "PurchaseAgreement"
	DocumentOther             DocumentType = "Other"
)

type DocumentStatus string

const (
	DocumentRequired    DocumentStatus = "Required"
	DocumentRequested   DocumentStatus = "Requested"
	DocumentReceived    DocumentStatus = "Received"
	DocumentUnderReview DocumentStatus = "UnderReview"
	DocumentApproved    DocumentStatus = "Approved"
	DocumentRejected    DocumentStatus = "Rejected"
	DocumentWaived      DocumentStatus = "Waived"
)

type Document struct {
	ID            uuid.UUID      `json:"id"`
	ApplicationID uuid.UUID      `json:"applicationId"`
	Name          string         `json:"documentName"`
	Type          DocumentType   `json:"documentType"`
	Status        DocumentStatus `json:"status"`
	Notes         string         `json:"notes,omitempty"`
	RequestedAt   *time.Time     `json:"requestedAt,omitempty"`
	ReceivedAt    *time.Time     `json:"receivedAt,omitempty"`
	ApprovedAt    *time.Time     `json:"approvedAt,omitempty"`
}

// Outstanding is true while the borrower still owes the document.
func (d Document) Outstanding() bool {
	return d.Status == DocumentRequired || d.Status == DocumentRequested || d.Status == DocumentRejected
}

func (t DocumentType) Valid() bool {
	switch t {
	case DocumentDriversLicense, DocumentPayStubs, DocumentW2Forms, DocumentBankStatements,
		DocumentTaxReturns, DocumentPurchaseAgreement, DocumentOther:
		return true
	}
	return false
}

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentRequired, DocumentRequested, DocumentReceived, DocumentUnderReview,
		DocumentApproved, DocumentRejected, DocumentWaived:
		return true
	}
	return false
}

// RequiredDocuments lists the documents attached to every new application.
var RequiredDocuments = []struct {
	Name string
	Type DocumentType
}{
	{"Government ID", DocumentDriversLicense},
	{"Recent Pay Stubs (2 months)", DocumentPayStubs},
	{"W-2 Forms (2 years)", DocumentW2Forms},
	{"Bank Statements (2 months)", DocumentBankStatements},
	{"Tax Returns (2 years)", DocumentTaxReturns},
}
