package orchestrator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/gateway"
	"loan-orchestrator/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryStore struct {
	mu      sync.Mutex
	apps    map[uuid.UUID]models.Application
	saves   []Changes
	seq     map[int]int64
	saveErr error
}

func newMemoryStore(apps ...*models.Application) *memoryStore {
	s := &memoryStore{apps: map[uuid.UUID]models.Application{}, seq: map[int]int64{}}
	for _, a := range apps {
		s.apps[a.ID] = clone(a)
	}
	return s
}

func clone(a *models.Application) models.Application {
	c := *a
	c.StatusHistory = append([]models.StatusHistory(nil), a.StatusHistory...)
	c.Conditions = append([]models.Condition(nil), a.Conditions...)
	c.Documents = append([]models.Document(nil), a.Documents...)
	if a.Underwriting != nil {
		uw := *a.Underwriting
		c.Underwriting = &uw
	}
	return c
}

func (s *memoryStore) Load(_ context.Context, id uuid.UUID) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, apperrors.NewApplicationNotFoundError(id.String())
	}
	c := clone(&a)
	return &c, nil
}

func (s *memoryStore) Save(ctx context.Context, changes Changes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.saveErr != nil {
		return s.saveErr
	}
	s.apps[changes.Application.ID] = clone(changes.Application)
	s.saves = append(s.saves, changes)
	return nil
}

func (s *memoryStore) List(_ context.Context, filter ListFilter) ([]models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Application
	for _, a := range s.apps {
		if filter.CustomerID != nil && a.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, clone(&a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) NextSequence(_ context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[year]++
	return s.seq[year], nil
}

func (s *memoryStore) get(id uuid.UUID) models.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apps[id]
}

type fakeCustomers struct {
	profile     gateway.Result[gateway.CustomerProfile]
	credit      gateway.Result[gateway.CreditReport]
	employments gateway.Result[[]gateway.Employment]
	exists      bool
	unreachable bool
	delay       time.Duration
	calls       atomic.Int32
	ctxErrs     atomic.Int32
}

func (f *fakeCustomers) wait(ctx context.Context) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if ctx.Err() != nil {
		f.ctxErrs.Add(1)
	}
}

func (f *fakeCustomers) GetProfile(ctx context.Context, _ uuid.UUID) gateway.Result[gateway.CustomerProfile] {
	f.wait(ctx)
	return f.profile
}

func (f *fakeCustomers) GetCredit(ctx context.Context, _ uuid.UUID) gateway.Result[gateway.CreditReport] {
	f.wait(ctx)
	return f.credit
}

func (f *fakeCustomers) ListEmployments(ctx context.Context, _ uuid.UUID) gateway.Result[[]gateway.Employment] {
	f.wait(ctx)
	return f.employments
}

func (f *fakeCustomers) Exists(context.Context, uuid.UUID) gateway.Result[bool] {
	return existence(f.exists, f.unreachable)
}

func existence(exists, unreachable bool) gateway.Result[bool] {
	if unreachable {
		return gateway.Absent[bool]()
	}
	return gateway.Found(exists)
}

type fakeProperties struct {
	property    gateway.Result[gateway.Property]
	appraisal   gateway.Result[gateway.Appraisal]
	title       gateway.Result[gateway.TitleSearch]
	exists      bool
	unreachable bool
	calls       atomic.Int32
}

func (f *fakeProperties) GetProperty(context.Context, uuid.UUID) gateway.Result[gateway.Property] {
	f.calls.Add(1)
	return f.property
}

func (f *fakeProperties) GetAppraisal(context.Context, uuid.UUID) gateway.Result[gateway.Appraisal] {
	f.calls.Add(1)
	return f.appraisal
}

func (f *fakeProperties) GetTitle(context.Context, uuid.UUID) gateway.Result[gateway.TitleSearch] {
	f.calls.Add(1)
	return f.title
}

func (f *fakeProperties) Exists(context.Context, uuid.UUID) gateway.Result[bool] {
	return existence(f.exists, f.unreachable)
}

type fakeLoans struct {
	loan        gateway.Result[gateway.Loan]
	funded      bool
	created     []gateway.CreateLoanRequest
	fundCalls   int
	firstPayDue time.Time
}

func (f *fakeLoans) CreateLoan(_ context.Context, req gateway.CreateLoanRequest) gateway.Result[gateway.Loan] {
	f.created = append(f.created, req)
	return f.loan
}

func (f *fakeLoans) FundLoan(_ context.Context, _ uuid.UUID, _, firstPaymentDate time.Time) bool {
	f.fundCalls++
	f.firstPayDue = firstPaymentDate
	return f.funded
}

type fakePayments struct {
	schedule gateway.Result[gateway.PaymentSchedule]
	requests []gateway.CreateScheduleRequest
	delay    time.Duration
}

func (f *fakePayments) CreateSchedule(_ context.Context, req gateway.CreateScheduleRequest) gateway.Result[gateway.PaymentSchedule] {
	f.requests = append(f.requests, req)
	time.Sleep(f.delay)
	return f.schedule
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type recordingListener struct {
	mu      sync.Mutex
	entries []models.StatusHistory
	err     error
}

func (l *recordingListener) ApplicationChanged(_ context.Context, _ *models.Application, history []models.StatusHistory) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, history...)
	return l.err
}

var errListener = errors.New("listener unavailable")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func scenarioCustomers() *fakeCustomers {
	return &fakeCustomers{
		profile: gateway.Found(gateway.CustomerProfile{FirstName: "Ada", LastName: "Lovelace"}),
		credit:  gateway.Found(gateway.CreditReport{CreditScore: 700, CreditRating: "Good"}),
		employments: gateway.Found([]gateway.Employment{
			{EmployerName: "Contoso", AnnualIncome: dec("108000"), YearsEmployed: 6, IsCurrent: true},
		}),
		exists: true,
	}
}

func scenarioProperties() *fakeProperties {
	return &fakeProperties{
		property:  gateway.Found(gateway.Property{EstimatedValue: dec("390000")}),
		appraisal: gateway.Found(gateway.Appraisal{AppraisedValue: dec("400000"), Status: "Completed"}),
		title:     gateway.Found(gateway.TitleSearch{IsClear: true, Status: "Clear"}),
		exists:    true,
	}
}

func application(status models.ApplicationStatus) *models.Application {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &models.Application{
		ID:                uuid.New(),
		ApplicationNumber: "APP-2025-000001",
		CustomerID:        uuid.New(),
		PropertyID:        uuid.New(),
		RequestedAmount:   dec("300000"),
		DownPayment:       dec("100000"),
		TermMonths:        360,
		Purpose:           models.PurposePurchase,
		Type:              models.TypePurchase,
		Status:            status,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
}
