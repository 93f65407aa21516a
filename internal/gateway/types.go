package gateway

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CustomerProfile struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Age       int       `json:"age"`
}

type CreditReport struct {
	CreditScore     int             `json:"creditScore"`
	CreditRating    string          `json:"creditRating"`
	TotalDebt       decimal.Decimal `json:"totalDebt"`
	AvailableCredit decimal.Decimal `json:"availableCredit"`
}

type Employment struct {
	EmployerName  string          `json:"employerName"`
	JobTitle      string          `json:"jobTitle,omitempty"`
	AnnualIncome  decimal.Decimal `json:"annualIncome"`
	YearsEmployed int             `json:"yearsEmployed"`
	IsCurrent     bool            `json:"isCurrent"`
	StartDate     *time.Time      `json:"startDate,omitempty"`
}

type Property struct {
	ID             uuid.UUID       `json:"id"`
	FullAddress    string          `json:"fullAddress"`
	PropertyType   string          `json:"propertyType"`
	EstimatedValue decimal.Decimal `json:"estimatedValue"`
	ListingPrice   decimal.Decimal `json:"listingPrice"`
	YearBuilt      int             `json:"yearBuilt"`
	SquareFeet     decimal.Decimal `json:"squareFeet"`
}

const AppraisalCompleted = "Completed"

type Appraisal struct {
	AppraisedValue decimal.Decimal `json:"appraisedValue"`
	AppraisalDate  time.Time       `json:"appraisalDate"`
	Status         string          `json:"status"`
}

type TitleSearch struct {
	IsClear  bool   `json:"isClear"`
	Status   string `json:"status"`
	HasLiens bool   `json:"hasLiens"`
}

type Loan struct {
	ID              uuid.UUID       `json:"id"`
	LoanNumber      string          `json:"loanNumber"`
	CustomerID      uuid.UUID       `json:"customerId"`
	PropertyID      uuid.UUID       `json:"propertyId"`
	PrincipalAmount decimal.Decimal `json:"principalAmount"`
	InterestRate    decimal.Decimal `json:"interestRate"`
	TermMonths      int             `json:"termMonths"`
	Status          string          `json:"status"`
	MonthlyPayment  decimal.Decimal `json:"monthlyPayment"`
}

// LoanTypeConventional is the loan service's code for a conventional loan.
const LoanTypeConventional = 1

type CreateLoanRequest struct {
	CustomerID      uuid.UUID        `json:"customerId"`
	PropertyID      uuid.UUID        `json:"propertyId"`
	PrincipalAmount decimal.Decimal  `json:"principalAmount"`
	InterestRate    decimal.Decimal  `json:"interestRate"`
	TermMonths      int              `json:"termMonths"`
	LoanType        int              `json:"loanType"`
	DownPayment     *decimal.Decimal `json:"downPayment,omitempty"`
}

type FundLoanRequest struct {
	FundingDate      time.Time `json:"fundingDate"`
	FirstPaymentDate time.Time `json:"firstPaymentDate"`
}

type PaymentSchedule struct {
	ID                   uuid.UUID       `json:"id"`
	LoanID               uuid.UUID       `json:"loanId"`
	IsAutoPay            bool            `json:"isAutoPay"`
	NextPaymentDate      *time.Time      `json:"nextPaymentDate,omitempty"`
	RegularPaymentAmount decimal.Decimal `json:"regularPaymentAmount"`
}

type CreateScheduleRequest struct {
	LoanID               uuid.UUID       `json:"loanId"`
	CustomerID           uuid.UUID       `json:"customerId"`
	IsAutoPay            bool            `json:"isAutoPay"`
	PaymentDayOfMonth    int             `json:"paymentDayOfMonth"`
	RegularPaymentAmount decimal.Decimal `json:"regularPaymentAmount"`
}
