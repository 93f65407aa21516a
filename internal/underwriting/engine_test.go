package underwriting

import (
	"testing"
	"time"

	"loan-orchestrator/internal/common/config"
	"loan-orchestrator/internal/gateway"
	"loan-orchestrator/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func scenarioTerms() Terms {
	return Terms{RequestedAmount: d("300000"), TermMonths: 360}
}

// scenarioSnapshot: score 700, $9,000/mo income, $400k appraisal, clear title.
func scenarioSnapshot() Snapshot {
	return Snapshot{
		Profile: gateway.Found(gateway.CustomerProfile{FullName: "Jane Doe"}),
		Credit:  gateway.Found(gateway.CreditReport{CreditScore: 700, CreditRating: "Good"}),
		Employments: gateway.Found([]gateway.Employment{
			{EmployerName: "Old Co", AnnualIncome: d("60000"), IsCurrent: false},
			{EmployerName: "Acme", AnnualIncome: d("108000"), YearsEmployed: 6, IsCurrent: true},
		}),
		Property:  gateway.Found(gateway.Property{EstimatedValue: d("380000")}),
		Appraisal: gateway.Found(gateway.Appraisal{AppraisedValue: d("400000"), Status: "Completed"}),
		Title:     gateway.Found(gateway.TitleSearch{IsClear: true, Status: "Clear"}),
	}
}

func TestPow(t *testing.T) {
	for _, tt := range []struct {
		base string
		exp  int
		want string
	}{
		{"1.5", 10, "57.6650390625"},
		{"1.005", 0, "1"},
		{"1.005", 1, "1.005"},
		{"1.1", 3, "1.331"},
	} {
		got := pow(d(tt.base), tt.exp)
		assert.True(t, got.Equal(d(tt.want)), "%s^%d: got %s want %s", tt.base, tt.exp, got, tt.want)
	}
}

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		want      string
	}{
		{"30 year at reference rate", "300000", "6.5", 360, "1896.20"},
		{"15 year", "200000", "5", 180, "1581.59"},
		{"jumbo principal", "987654321.99", "7.125", 360, "6654010.11"},
		{"tiny rate long term", "250000", "0.01", 480, "521.88"},
		{"zero rate spreads evenly", "12000", "0", 12, "1000"},
		{"zero term", "300000", "6.5", 0, "0"},
		{"zero principal", "0", "6.5", 360, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyPayment(d(tt.principal), d(tt.rate), tt.term)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestEvaluate_ScenarioA_Approved(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	ev := engine.Evaluate(scenarioTerms(), scenarioSnapshot())

	require.True(t, ev.EstimatedPayment.Valid)
	assert.Equal(t, "1896.20", ev.EstimatedPayment.Decimal.StringFixed(2))
	require.True(t, ev.DTI.Valid)
	assert.Equal(t, "21.07", ev.DTI.Decimal.StringFixed(2))
	require.True(t, ev.LTV.Valid)
	assert.Equal(t, "75.00", ev.LTV.Decimal.StringFixed(2))
	assert.True(t, ev.ValueUsed.Decimal.Equal(d("400000")))

	assert.True(t, ev.CreditApproved)
	assert.Equal(t, 700, *ev.CreditScore)
	assert.Equal(t, "Good", ev.CreditRating)
	assert.True(t, ev.GrossMonthlyIncome.Decimal.Equal(d("9000")))
	assert.Equal(t, 6, *ev.YearsEmployed)
	assert.True(t, ev.IncomeVerified)
	assert.True(t, ev.EmploymentVerified)
	assert.True(t, ev.PropertyApproved)
	assert.True(t, ev.TitleClear)

	assert.Empty(t, ev.Issues)
	assert.Equal(t, models.DecisionApproved, ev.Decision)
	assert.Equal(t, "No issues found", ev.Notes())
}

func TestEvaluate_ScenarioB_TitleAbsent(t *testing.T) {
	snap := scenarioSnapshot()
	snap.Title = gateway.Absent[gateway.TitleSearch]()

	ev := NewEngine(DefaultPolicy()).Evaluate(scenarioTerms(), snap)

	assert.Equal(t, []Issue{IssueTitle}, ev.Issues)
	assert.False(t, ev.TitleClear)
	assert.Equal(t, models.DecisionApprovedWithConditions, ev.Decision)
	assert.Equal(t, "Issues: Title not clear", ev.Notes())
}

func TestEvaluate_ScenarioB_TitleAbsentAndLowCredit(t *testing.T) {
	snap := scenarioSnapshot()
	snap.Title = gateway.Absent[gateway.TitleSearch]()
	snap.Credit = gateway.Found(gateway.CreditReport{CreditScore: 600})

	ev := NewEngine(DefaultPolicy()).Evaluate(scenarioTerms(), snap)

	assert.ElementsMatch(t, []Issue{IssueCredit, IssueTitle}, ev.Issues)
	assert.Equal(t, models.DecisionApprovedWithConditions, ev.Decision)
}

func TestEvaluate_ScenarioC_EstimatedValueFallback(t *testing.T) {
	snap := scenarioSnapshot()
	snap.Appraisal = gateway.Absent[gateway.Appraisal]()
	snap.Property = gateway.Found(gateway.Property{EstimatedValue: d("250000")})

	ev := NewEngine(DefaultPolicy()).Evaluate(scenarioTerms(), snap)

	require.True(t, ev.LTV.Valid)
	assert.Equal(t, "120.00", ev.LTV.Decimal.StringFixed(2))
	assert.True(t, ev.ValueUsed.Decimal.Equal(d("250000")))
	assert.False(t, ev.PropertyApproved)
	assert.Contains(t, ev.Issues, IssueLTV)
	assert.Equal(t, models.DecisionApprovedWithConditions, ev.Decision)
}

func TestEvaluate_EverythingAbsent(t *testing.T) {
	ev := NewEngine(DefaultPolicy()).Evaluate(scenarioTerms(), Snapshot{})

	assert.False(t, ev.DTI.Valid)
	assert.False(t, ev.LTV.Valid)
	assert.False(t, ev.GrossMonthlyIncome.Valid)
	assert.Nil(t, ev.CreditScore)
	assert.ElementsMatch(t, []Issue{IssueCredit, IssueTitle}, ev.Issues)
	assert.Equal(t, models.DecisionApprovedWithConditions, ev.Decision)
	assert.Len(t, Snapshot{}.AbsentInputs(), 6)
}

func TestEvaluate_NoCurrentEmploymentLeavesDTIAbsent(t *testing.T) {
	snap := scenarioSnapshot()
	snap.Employments = gateway.Found([]gateway.Employment{
		{EmployerName: "Former", AnnualIncome: d("90000"), IsCurrent: false},
	})

	ev := NewEngine(DefaultPolicy()).Evaluate(scenarioTerms(), snap)

	assert.False(t, ev.DTI.Valid)
	assert.False(t, ev.IncomeVerified)
	assert.False(t, ev.EmploymentVerified)
	assert.Empty(t, ev.Issues)
}

func TestEvaluate_ZeroIncomeSkipsDTI(t *testing.T) {
	snap := scenarioSnapshot()
	snap.Employments = gateway.Found([]gateway.Employment{{AnnualIncome: decimal.Zero, IsCurrent: true}})

	ev := NewEngine(DefaultPolicy()).Evaluate(scenarioTerms(), snap)

	assert.False(t, ev.DTI.Valid)
	assert.True(t, ev.EmploymentVerified)
}

func TestEvaluate_Denied(t *testing.T) {
	snap := Snapshot{
		Credit:      gateway.Found(gateway.CreditReport{CreditScore: 540}),
		Employments: gateway.Found([]gateway.Employment{{AnnualIncome: d("24000"), IsCurrent: true}}),
		Property:    gateway.Found(gateway.Property{EstimatedValue: d("200000")}),
	}

	ev := NewEngine(DefaultPolicy()).Evaluate(scenarioTerms(), snap)

	assert.ElementsMatch(t, []Issue{IssueCredit, IssueDTI, IssueLTV, IssueTitle}, ev.Issues)
	assert.Equal(t, models.DecisionDenied, ev.Decision)
}

func TestEvaluate_MostRecentCurrentEmployment(t *testing.T) {
	older := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := scenarioSnapshot()
	snap.Employments = gateway.Found([]gateway.Employment{
		{EmployerName: "Side gig", AnnualIncome: d("12000"), IsCurrent: true, StartDate: &older},
		{EmployerName: "Main", AnnualIncome: d("120000"), IsCurrent: true, StartDate: &newer},
	})

	ev := NewEngine(DefaultPolicy()).Evaluate(scenarioTerms(), snap)
	assert.True(t, ev.GrossMonthlyIncome.Decimal.Equal(d("10000")))
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	first := engine.Evaluate(scenarioTerms(), scenarioSnapshot())
	for i := 0; i < 5; i++ {
		again := engine.Evaluate(scenarioTerms(), scenarioSnapshot())
		assert.True(t, first.DTI.Decimal.Equal(again.DTI.Decimal))
		assert.True(t, first.LTV.Decimal.Equal(again.LTV.Decimal))
		assert.Equal(t, first.Decision, again.Decision)
	}
}

func TestClassify_MonotonicInIssueCount(t *testing.T) {
	engine := NewEngine(DefaultPolicy())
	want := []models.UnderwritingDecision{
		models.DecisionApproved,
		models.DecisionApprovedWithConditions,
		models.DecisionApprovedWithConditions,
		models.DecisionDenied,
		models.DecisionDenied,
	}
	for n, decision := range want {
		assert.Equal(t, decision, engine.Classify(n), "issues=%d", n)
	}
}

func TestPolicyFromConfig(t *testing.T) {
	p := PolicyFromConfig(config.UnderwritingConfig{
		ReferenceRate: 7.25, MinCreditScore: 640, MaxDTI: 40, MaxLTV: 95, MaxConditionalIssues: 1,
	})
	assert.True(t, p.ReferenceRate.Equal(d("7.25")))
	assert.Equal(t, 640, p.MinCreditScore)

	engine := NewEngine(p)
	assert.Equal(t, models.DecisionDenied, engine.Classify(2))
}
