// internal/models/status.go
package models

type ApplicationStatus string

const (
	StatusDraft               ApplicationStatus = "Draft"
	StatusSubmitted           ApplicationStatus = "Submitted"
	StatusDocumentsRequested  ApplicationStatus = "DocumentsRequested"
	StatusDocumentsReceived   ApplicationStatus = "DocumentsReceived"
	StatusInReview            ApplicationStatus = "InReview"
	StatusUnderwriting        ApplicationStatus = "Underwriting"
	StatusConditionalApproval ApplicationStatus = "ConditionalApproval"
	StatusApproved            ApplicationStatus = "Approved"
	StatusRejected            ApplicationStatus = "Rejected"
	StatusCounterOffer        ApplicationStatus = "CounterOffer"
	StatusAcceptedByBorrower  ApplicationStatus = "AcceptedByBorrower"
	StatusClearToClose        ApplicationStatus = "ClearToClose"
	StatusClosed              ApplicationStatus = "Closed"
	StatusFunded              ApplicationStatus = "Funded"
	StatusWithdrawn           ApplicationStatus = "Withdrawn"
	StatusExpired             ApplicationStatus = "Expired"
)

var allStatuses = []ApplicationStatus{
	StatusDraft, StatusSubmitted, StatusDocumentsRequested, StatusDocumentsReceived,
	StatusInReview, StatusUnderwriting, StatusConditionalApproval, StatusApproved,
	StatusRejected, StatusCounterOffer, StatusAcceptedByBorrower, StatusClearToClose,
	StatusClosed, StatusFunded, StatusWithdrawn, StatusExpired,
}

// Statuses returns every application status in lifecycle order.
func Statuses() []ApplicationStatus {
	out := make([]ApplicationStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func (s ApplicationStatus) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s ApplicationStatus) Terminal() bool {
	switch s {
	case StatusRejected, StatusClosed, StatusFunded, StatusWithdrawn, StatusExpired:
		return true
	default:
		return false
	}
}

// Fundable reports whether a loan may be created for an application in s.
func (s ApplicationStatus) Fundable() bool {
	return s == StatusApproved || s == StatusClearToClose
}

type LoanPurpose string

const (
	PurposePurchase         LoanPurpose = "Purchase"
	PurposeRefinance        LoanPurpose = "Refinance"
	PurposeCashOutRefinance LoanPurpose = "CashOutRefinance"
	PurposeHomeEquity       LoanPurpose = "HomeEquity"
	PurposeConstruction     LoanPurpose = "Construction"
)

type ApplicationType string

const (
	TypePurchase        ApplicationType = "Purchase"
	TypeRefinance       ApplicationType = "Refinance"
	TypeHELOC           ApplicationType = "HELOC"
	TypeReverseMortgage ApplicationType = "ReverseMortgage"
)
