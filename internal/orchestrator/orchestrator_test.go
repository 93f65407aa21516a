package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/gateway"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/underwriting"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 5, 20, 14, 30, 0, 0, time.UTC)

type harness struct {
	store      *memoryStore
	customers  *fakeCustomers
	properties *fakeProperties
	loans      *fakeLoans
	payments   *fakePayments
	listener   *recordingListener
	orch       *Orchestrator
}

func newHarness(t *testing.T, apps ...*models.Application) *harness {
	t.Helper()
	h := &harness{
		store:      newMemoryStore(apps...),
		customers:  scenarioCustomers(),
		properties: scenarioProperties(),
		loans: &fakeLoans{
			loan: gateway.Found(gateway.Loan{
				ID:             uuid.New(),
				LoanNumber:     "LN-2025-0001",
				MonthlyPayment: dec("1896.20"),
			}),
			funded: true,
		},
		payments: &fakePayments{schedule: gateway.Found(gateway.PaymentSchedule{ID: uuid.New()})},
		listener: &recordingListener{},
	}
	h.orch = New(Dependencies{
		Store:      h.store,
		Customers:  h.customers,
		Properties: h.properties,
		Loans:      h.loans,
		Payments:   h.payments,
		Clock:      fixedClock{now: testNow},
		Listeners:  []ChangeListener{h.listener},
	}, logger.NewTestLogger(t))
	return h
}

func TestStartUnderwriting_ScenarioA_Approved(t *testing.T) {
	app := application(models.StatusSubmitted)
	h := newHarness(t, app)

	res, err := h.orch.StartUnderwriting(context.Background(), app.ID)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionApproved, res.Evaluation.Decision)
	assert.Empty(t, res.Absent)
	assert.Equal(t, "21.07", res.Evaluation.DTI.Decimal.StringFixed(2))
	assert.Equal(t, "75.00", res.Evaluation.LTV.Decimal.StringFixed(2))

	saved := h.store.get(app.ID)
	assert.Equal(t, models.StatusUnderwriting, saved.Status)
	require.NotNil(t, saved.UnderwritingStartedAt)
	assert.Equal(t, testNow, *saved.UnderwritingStartedAt)
	assert.True(t, saved.LTV.Valid)
	assert.True(t, saved.DTI.Valid)

	require.NotNil(t, saved.Underwriting)
	assert.Equal(t, models.AutomatedUnderwriter, saved.Underwriting.UnderwriterName)
	assert.True(t, saved.Underwriting.PropertyApproved)
	assert.Equal(t, "400000", saved.Underwriting.AppraisedValue.Decimal.String())

	require.Len(t, saved.StatusHistory, 1)
	assert.Equal(t, models.StatusSubmitted, saved.StatusHistory[0].FromStatus)
	assert.Equal(t, models.ActorSystem, saved.StatusHistory[0].ChangedBy)

	require.Len(t, h.store.saves, 1)
	assert.True(t, h.store.saves[0].UnderwritingNew)
	assert.Len(t, h.listener.entries, 1)
}

func TestStartUnderwriting_TitleAbsentIsConditional(t *testing.T) {
	app := application(models.StatusSubmitted)
	h := newHarness(t, app)
	h.properties.title = gateway.Absent[gateway.TitleSearch]()

	res, err := h.orch.StartUnderwriting(context.Background(), app.ID)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionApprovedWithConditions, res.Evaluation.Decision)
	assert.Equal(t, []string{"title"}, res.Absent)
	assert.False(t, res.Underwriting.TitleClear)
}

func TestStartUnderwriting_FallsBackToEstimatedValue(t *testing.T) {
	app := application(models.StatusSubmitted)
	h := newHarness(t, app)
	h.properties.appraisal = gateway.Absent[gateway.Appraisal]()
	h.properties.property = gateway.Found(gateway.Property{EstimatedValue: dec("250000")})

	res, err := h.orch.StartUnderwriting(context.Background(), app.ID)
	require.NoError(t, err)

	assert.Equal(t, "120.00", res.Evaluation.LTV.Decimal.StringFixed(2))
	assert.Contains(t, res.Evaluation.Issues, underwriting.IssueLTV)
	assert.False(t, res.Underwriting.PropertyApproved)
}

func TestStartUnderwriting_EverythingAbsentStillDecides(t *testing.T) {
	app := application(models.StatusSubmitted)
	h := newHarness(t, app)
	h.customers = &fakeCustomers{}
	h.properties = &fakeProperties{}
	h.orch.customers = h.customers
	h.orch.properties = h.properties

	res, err := h.orch.StartUnderwriting(context.Background(), app.ID)
	require.NoError(t, err)

	assert.Len(t, res.Absent, 6)
	assert.Equal(t, models.DecisionApprovedWithConditions, res.Evaluation.Decision)
	assert.False(t, res.Evaluation.DTI.Valid)
	assert.False(t, res.Evaluation.LTV.Valid)
	assert.Equal(t, models.StatusUnderwriting, h.store.get(app.ID).Status)
}

func TestStartUnderwriting_UpdatesExistingRecord(t *testing.T) {
	app := application(models.StatusUnderwriting)
	existingID := uuid.New()
	created := testNow.Add(-24 * time.Hour)
	app.Underwriting = &models.Underwriting{ID: existingID, ApplicationID: app.ID, CreatedAt: created}
	startedAt := testNow.Add(-24 * time.Hour)
	app.UnderwritingStartedAt = &startedAt
	h := newHarness(t, app)

	res, err := h.orch.StartUnderwriting(context.Background(), app.ID)
	require.NoError(t, err)

	assert.Equal(t, existingID, res.Underwriting.ID)
	assert.Equal(t, created, res.Underwriting.CreatedAt)
	assert.False(t, h.store.saves[0].UnderwritingNew)
	assert.Equal(t, startedAt, *h.store.get(app.ID).UnderwritingStartedAt)
}

func TestStartUnderwriting_WaitsForAllReadsConcurrently(t *testing.T) {
	app := application(models.StatusSubmitted)
	h := newHarness(t, app)
	h.customers.delay = 100 * time.Millisecond

	start := time.Now()
	_, err := h.orch.StartUnderwriting(context.Background(), app.ID)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 280*time.Millisecond)
	assert.Equal(t, int32(3), h.customers.calls.Load())
	assert.Equal(t, int32(3), h.properties.calls.Load())
}

func TestStartUnderwriting_CallerCancellationDoesNotCancelReads(t *testing.T) {
	app := application(models.StatusSubmitted)
	h := newHarness(t, app)
	h.customers.delay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.orch.StartUnderwriting(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), h.customers.ctxErrs.Load())
}

func TestStartUnderwriting_NotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.orch.StartUnderwriting(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, int32(0), h.customers.calls.Load())
}

func TestStartUnderwriting_PersistenceFailure(t *testing.T) {
	app := application(models.StatusSubmitted)
	h := newHarness(t, app)
	h.store.saveErr = errors.New("connection refused")

	_, err := h.orch.StartUnderwriting(context.Background(), app.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPersistenceFailed))
	assert.Equal(t, models.StatusSubmitted, h.store.get(app.ID).Status)
	assert.Empty(t, h.listener.entries)
}

func TestListenerFailureIsNotFatal(t *testing.T) {
	app := application(models.StatusSubmitted)
	h := newHarness(t, app)
	h.listener.err = errListener

	_, err := h.orch.StartUnderwriting(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderwriting, h.store.get(app.ID).Status)
}

func TestRecordDecision(t *testing.T) {
	tests := []struct {
		name           string
		decision       Decision
		wantStatus     models.ApplicationStatus
		wantUW         models.UnderwritingDecision
		wantAmount     string
		wantConditions int
	}{
		{
			name:       "approved defaults amount to requested",
			decision:   Decision{Approved: true, Reason: "Meets policy"},
			wantStatus: models.StatusApproved,
			wantUW:     models.DecisionApproved,
			wantAmount: "300000",
		},
		{
			name: "approved with conditions",
			decision: Decision{
				Approved:       true,
				ApprovedAmount: decimal.NewNullDecimal(dec("280000")),
				InterestRate:   decimal.NewNullDecimal(dec("6.25")),
				Reason:         "Approved subject to conditions",
				Conditions:     []string{"Proof of insurance", "Final pay stub"},
			},
			wantStatus:     models.StatusConditionalApproval,
			wantUW:         models.DecisionApprovedWithConditions,
			wantAmount:     "280000",
			wantConditions: 2,
		},
		{
			name:       "rejected",
			decision:   Decision{Approved: false, Reason: "DTI too high", Conditions: []string{"ignored"}},
			wantStatus: models.StatusRejected,
			wantUW:     models.DecisionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := application(models.StatusUnderwriting)
			app.Underwriting = &models.Underwriting{ID: uuid.New(), ApplicationID: app.ID, Decision: models.DecisionApprovedWithConditions}
			h := newHarness(t, app)

			got, err := h.orch.RecordDecision(context.Background(), app.ID, tt.decision)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.decision.Reason, got.DecisionReason)
			require.NotNil(t, got.DecisionAt)

			if tt.wantAmount != "" {
				assert.Equal(t, tt.wantAmount, got.ApprovedLoanAmount.Decimal.String())
			} else {
				assert.False(t, got.ApprovedLoanAmount.Valid)
			}
			assert.Equal(t, tt.decision.InterestRate, got.OfferedInterestRate)

			saved := h.store.get(app.ID)
			assert.Equal(t, tt.wantUW, saved.Underwriting.Decision)
			assert.Equal(t, tt.decision.Reason, saved.Underwriting.Notes)
			assert.NotNil(t, saved.Underwriting.CompletedAt)
			assert.Len(t, saved.Conditions, tt.wantConditions)
			for _, c := range saved.Conditions {
				assert.Equal(t, models.ConditionPriorToClosing, c.Type)
				assert.Equal(t, models.ConditionPending, c.Status)
			}
			require.Len(t, saved.StatusHistory, 1)
			assert.Equal(t, tt.wantStatus, saved.StatusHistory[0].ToStatus)
		})
	}
}

func TestRecordDecision_RejectionClearsEarlierPricing(t *testing.T) {
	app := application(models.StatusConditionalApproval)
	app.ApprovedLoanAmount = decimal.NewNullDecimal(dec("280000"))
	app.OfferedInterestRate = decimal.NewNullDecimal(dec("6.25"))
	h := newHarness(t, app)

	_, err := h.orch.RecordDecision(context.Background(), app.ID, Decision{Reason: "Appraisal revised"})
	require.NoError(t, err)

	saved := h.store.get(app.ID)
	assert.Equal(t, models.StatusRejected, saved.Status)
	assert.False(t, saved.ApprovedLoanAmount.Valid)
	assert.False(t, saved.OfferedInterestRate.Valid)
}

func TestRecordDecision_WithoutUnderwritingRecord(t *testing.T) {
	app := application(models.StatusInReview)
	h := newHarness(t, app)

	got, err := h.orch.RecordDecision(context.Background(), app.ID, Decision{Approved: true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Nil(t, got.Underwriting)
}

func TestRecordDecision_NotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.orch.RecordDecision(context.Background(), uuid.New(), Decision{Approved: true})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestFundLoan_AllStepsSucceed(t *testing.T) {
	app := application(models.StatusApproved)
	app.ApprovedLoanAmount = decimal.NewNullDecimal(dec("280000"))
	h := newHarness(t, app)

	res, err := h.orch.FundLoan(context.Background(), app.ID)
	require.NoError(t, err)

	assert.True(t, res.Funded)
	assert.True(t, res.ScheduleCreated)
	assert.Empty(t, res.Degraded)

	require.Len(t, h.loans.created, 1)
	req := h.loans.created[0]
	assert.Equal(t, "280000", req.PrincipalAmount.String())
	assert.Equal(t, "6.5", req.InterestRate.String())
	assert.Equal(t, 360, req.TermMonths)
	assert.Equal(t, gateway.LoanTypeConventional, req.LoanType)
	require.NotNil(t, req.DownPayment)
	assert.Equal(t, "100000", req.DownPayment.String())

	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), h.loans.firstPayDue)

	require.Len(t, h.payments.requests, 1)
	sched := h.payments.requests[0]
	assert.True(t, sched.IsAutoPay)
	assert.Equal(t, 1, sched.PaymentDayOfMonth)
	assert.Equal(t, "1896.2", sched.RegularPaymentAmount.String())

	saved := h.store.get(app.ID)
	assert.Equal(t, models.StatusFunded, saved.Status)
	require.NotNil(t, saved.LoanID)
	assert.Equal(t, res.Loan.ID, *saved.LoanID)
	require.NotNil(t, saved.ClosedAt)
	require.Len(t, saved.StatusHistory, 1)
	assert.Equal(t, "Loan LN-2025-0001 created and funded", saved.StatusHistory[0].Reason)
}

func TestFundLoan_UsesOfferedRate(t *testing.T) {
	app := application(models.StatusClearToClose)
	app.OfferedInterestRate = decimal.NewNullDecimal(dec("5.875"))
	h := newHarness(t, app)

	_, err := h.orch.FundLoan(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.875", h.loans.created[0].InterestRate.String())
	assert.Equal(t, "300000", h.loans.created[0].PrincipalAmount.String())
}

func TestFundLoan_CreateFailureIsFatal(t *testing.T) {
	app := application(models.StatusApproved)
	h := newHarness(t, app)
	h.loans.loan = gateway.Absent[gateway.Loan]()

	_, err := h.orch.FundLoan(context.Background(), app.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDependencyFailure))

	saved := h.store.get(app.ID)
	assert.Equal(t, models.StatusApproved, saved.Status)
	assert.Nil(t, saved.LoanID)
	assert.Empty(t, saved.StatusHistory)
	assert.Zero(t, h.loans.fundCalls)
	assert.Empty(t, h.payments.requests)
}

func TestFundLoan_LaterStepFailuresDegrade(t *testing.T) {
	app := application(models.StatusApproved)
	h := newHarness(t, app)
	h.loans.funded = false
	h.payments.schedule = gateway.Absent[gateway.PaymentSchedule]()

	res, err := h.orch.FundLoan(context.Background(), app.ID)
	require.NoError(t, err)

	assert.False(t, res.Funded)
	assert.False(t, res.ScheduleCreated)
	require.Len(t, res.Degraded, 2)
	for _, d := range res.Degraded {
		assert.True(t, errors.Is(d, apperrors.ErrDependencyDegraded))
	}

	saved := h.store.get(app.ID)
	assert.Equal(t, models.StatusFunded, saved.Status)
	assert.NotNil(t, saved.LoanID)
}

func TestFundLoan_DraftIsInvalidState(t *testing.T) {
	app := application(models.StatusDraft)
	h := newHarness(t, app)

	_, err := h.orch.FundLoan(context.Background(), app.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))

	saved := h.store.get(app.ID)
	assert.Equal(t, models.StatusDraft, saved.Status)
	assert.Empty(t, saved.StatusHistory)
	assert.Empty(t, h.loans.created)
	assert.Empty(t, h.store.saves)
}

func TestFundLoan_SaveFailureAfterLoanCreated(t *testing.T) {
	app := application(models.StatusApproved)
	h := newHarness(t, app)
	h.store.saveErr = errors.New("deadlock detected")

	_, err := h.orch.FundLoan(context.Background(), app.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrPersistenceFailed))
	assert.Len(t, h.loans.created, 1)
	assert.Equal(t, models.StatusApproved, h.store.get(app.ID).Status)
}

func TestFundLoan_CallerDeadlineDuringScheduleStillLinksLoan(t *testing.T) {
	app := application(models.StatusApproved)
	h := newHarness(t, app)
	h.payments.delay = 80 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	res, err := h.orch.FundLoan(ctx, app.ID)
	require.NoError(t, err)
	assert.True(t, res.ScheduleCreated)
	require.Error(t, ctx.Err())

	saved := h.store.get(app.ID)
	assert.Equal(t, models.StatusFunded, saved.Status)
	require.NotNil(t, saved.LoanID)
	assert.Equal(t, res.Loan.ID, *saved.LoanID)

	_, err = h.orch.FundLoan(context.Background(), app.ID)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))
	assert.Len(t, h.loans.created, 1)
}

func TestStartUnderwriting_CancelledCallerStillPersists(t *testing.T) {
	app := application(models.StatusSubmitted)
	h := newHarness(t, app)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.orch.StartUnderwriting(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderwriting, h.store.get(app.ID).Status)
}

func TestFirstPaymentDate(t *testing.T) {
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		FirstPaymentDate(time.Date(2025, 11, 30, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		FirstPaymentDate(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)))
}
