// internal/workers/loan/fund-loan/models.go
package fundloan

import "github.com/shopspring/decimal"

type Input struct {
	ApplicationID string `json:"applicationId"`
}

type Output struct {
	ApplicationID     string          `json:"applicationId"`
	ApplicationStatus string          `json:"applicationStatus"`
	LoanID            string          `json:"loanId"`
	LoanNumber        string          `json:"loanNumber"`
	MonthlyPayment    decimal.Decimal `json:"monthlyPayment"`
	Funded            bool            `json:"funded"`
	ScheduleCreated   bool            `json:"scheduleCreated"`
	DegradedSteps     []string        `json:"degradedSteps"`
}
