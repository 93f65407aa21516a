// Package underwriting holds the automated decision engine. It performs no
// I/O: every input arrives in a Snapshot and every output leaves in an
// Evaluation.
package underwriting

import (
	"strings"

	"loan-orchestrator/internal/common/config"
	"loan-orchestrator/internal/gateway"
	"loan-orchestrator/internal/models"

	"github.com/shopspring/decimal"
)

// Policy holds the thresholds the engine applies.
type Policy struct {
	ReferenceRate        decimal.Decimal
	MinCreditScore       int
	MaxDTI               decimal.Decimal
	MaxLTV               decimal.Decimal
	MaxConditionalIssues int
}

func DefaultPolicy() Policy {
	return Policy{
		ReferenceRate:        decimal.RequireFromString("6.5"),
		MinCreditScore:       620,
		MaxDTI:               decimal.NewFromInt(43),
		MaxLTV:               decimal.NewFromInt(97),
		MaxConditionalIssues: 2,
	}
}

func PolicyFromConfig(c config.UnderwritingConfig) Policy {
	return Policy{
		ReferenceRate:        decimal.NewFromFloat(c.ReferenceRate),
		MinCreditScore:       c.MinCreditScore,
		MaxDTI:               decimal.NewFromFloat(c.MaxDTI),
		MaxLTV:               decimal.NewFromFloat(c.MaxLTV),
		MaxConditionalIssues: c.MaxConditionalIssues,
	}
}

// Terms are the parts of the application the engine prices.
type Terms struct {
	RequestedAmount decimal.Decimal
	TermMonths      int
}

// Snapshot is the aggregate gathered by the fan-out. Any field may be absent.
type Snapshot struct {
	Profile     gateway.Result[gateway.CustomerProfile]
	Credit      gateway.Result[gateway.CreditReport]
	Employments gateway.Result[[]gateway.Employment]
	Property    gateway.Result[gateway.Property]
	Appraisal   gateway.Result[gateway.Appraisal]
	Title       gateway.Result[gateway.TitleSearch]
}

// AbsentInputs names the snapshot slots that came back empty.
func (s Snapshot) AbsentInputs() []string {
	var absent []string
	if !s.Profile.Present() {
		absent = append(absent, "profile")
	}
	if !s.Credit.Present() {
		absent = append(absent, "credit")
	}
	if !s.Employments.Present() {
		absent = append(absent, "employments")
	}
	if !s.Property.Present() {
		absent = append(absent, "property")
	}
	if !s.Appraisal.Present() {
		absent = append(absent, "appraisal")
	}
	if !s.Title.Present() {
		absent = append(absent, "title")
	}
	return absent
}

type Issue string

const (
	IssueCredit Issue = "Credit not approved"
	IssueDTI    Issue = "DTI too high"
	IssueLTV    Issue = "LTV too high"
	IssueTitle  Issue = "Title not clear"
)

// Evaluation is the engine's output. Fields mirror models.Underwriting so the
// orchestrator can copy them onto a new or existing record.
type Evaluation struct {
	CreditScore        *int
	CreditRating       string
	CreditApproved     bool
	GrossMonthlyIncome decimal.NullDecimal
	YearsEmployed      *int
	EmploymentVerified bool
	IncomeVerified     bool
	EstimatedPayment   decimal.NullDecimal
	DTI                decimal.NullDecimal
	ValueUsed          decimal.NullDecimal
	LTV                decimal.NullDecimal
	PropertyApproved   bool
	TitleClear         bool
	Issues             []Issue
	Decision           models.UnderwritingDecision
}

type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Evaluate applies the credit, income, DTI, LTV and title rules and classifies
// the result by issue count.
func (e *Engine) Evaluate(terms Terms, snap Snapshot) Evaluation {
	var ev Evaluation

	if credit, ok := snap.Credit.Get(); ok {
		score := credit.CreditScore
		ev.CreditScore = &score
		ev.CreditRating = credit.CreditRating
		ev.CreditApproved = score >= e.policy.MinCreditScore
	}
	if !ev.CreditApproved {
		ev.Issues = append(ev.Issues, IssueCredit)
	}

	if job := currentEmployment(snap.Employments); job != nil {
		years := job.YearsEmployed
		ev.YearsEmployed = &years
		ev.EmploymentVerified = true
		ev.GrossMonthlyIncome = decimal.NewNullDecimal(job.AnnualIncome.Div(decimal.NewFromInt(12)))
	}

	if ev.GrossMonthlyIncome.Valid && ev.GrossMonthlyIncome.Decimal.IsPositive() {
		payment := MonthlyPayment(terms.RequestedAmount, e.policy.ReferenceRate, terms.TermMonths)
		ev.EstimatedPayment = decimal.NewNullDecimal(payment)
		ev.DTI = decimal.NewNullDecimal(Percent(payment, ev.GrossMonthlyIncome.Decimal))
		ev.IncomeVerified = true
		if ev.DTI.Decimal.GreaterThan(e.policy.MaxDTI) {
			ev.Issues = append(ev.Issues, IssueDTI)
		}
	}

	if appraisal, ok := snap.Appraisal.Get(); ok && appraisal.AppraisedValue.IsPositive() {
		ev.ValueUsed = decimal.NewNullDecimal(appraisal.AppraisedValue)
		ev.PropertyApproved = strings.EqualFold(appraisal.Status, gateway.AppraisalCompleted)
	} else if property, ok := snap.Property.Get(); ok && property.EstimatedValue.IsPositive() {
		ev.ValueUsed = decimal.NewNullDecimal(property.EstimatedValue)
	}
	if ev.ValueUsed.Valid {
		ev.LTV = decimal.NewNullDecimal(Percent(terms.RequestedAmount, ev.ValueUsed.Decimal))
		if ev.LTV.Decimal.GreaterThan(e.policy.MaxLTV) {
			ev.Issues = append(ev.Issues, IssueLTV)
		}
	}

	if title, ok := snap.Title.Get(); ok {
		ev.TitleClear = title.IsClear
	}
	if !ev.TitleClear {
		ev.Issues = append(ev.Issues, IssueTitle)
	}

	ev.Decision = e.Classify(len(ev.Issues))
	return ev
}

func (e *Engine) Classify(issues int) models.UnderwritingDecision {
	switch {
	case issues <= 0:
		return models.DecisionApproved
	case issues <= e.policy.MaxConditionalIssues:
		return models.DecisionApprovedWithConditions
	default:
		return models.DecisionDenied
	}
}

// Notes renders the issue list for the underwriting record.
func (ev Evaluation) Notes() string {
	if len(ev.Issues) == 0 {
		return "No issues found"
	}
	parts := make([]string, len(ev.Issues))
	for i, issue := range ev.Issues {
		parts[i] = string(issue)
	}
	return "Issues: " + strings.Join(parts, "; ")
}

// currentEmployment picks the most recent current job: the latest start date
// among current jobs, or the first current job when none carry a date.
func currentEmployment(res gateway.Result[[]gateway.Employment]) *gateway.Employment {
	jobs, ok := res.Get()
	if !ok {
		return nil
	}
	var best *gateway.Employment
	for i := range jobs {
		job := &jobs[i]
		if !job.IsCurrent {
			continue
		}
		if best == nil {
			best = job
			continue
		}
		if job.StartDate != nil && (best.StartDate == nil || job.StartDate.After(*best.StartDate)) {
			best = job
		}
	}
	return best
}
