// internal/repository/store.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"loan-orchestrator/internal/common/database"
	apperrors "loan-orchestrator/internal/common/errors"
	"loan-orchestrator/internal/models"
	"loan-orchestrator/internal/orchestrator"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ApplicationStore persists the application aggregate in PostgreSQL. Save
// writes the application row and all of its children in one transaction.
type ApplicationStore struct {
	db *sql.DB
}

func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

var _ orchestrator.Store = (*ApplicationStore)(nil)

func (s *ApplicationStore) Load(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	app, err := scanApplication(s.db.QueryRowContext(ctx, selectApplication, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewApplicationNotFoundError(id.String())
	}
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError("load application", err)
	}

	if app.Underwriting, err = s.loadUnderwriting(ctx, id); err != nil {
		return nil, apperrors.NewPersistenceFailedError("load underwriting", err)
	}
	if app.StatusHistory, err = s.loadHistory(ctx, id); err != nil {
		return nil, apperrors.NewPersistenceFailedError("load status history", err)
	}
	if app.Conditions, err = s.loadConditions(ctx, id); err != nil {
		return nil, apperrors.NewPersistenceFailedError("load conditions", err)
	}
	if app.Documents, err = s.loadDocuments(ctx, id); err != nil {
		return nil, apperrors.NewPersistenceFailedError("load documents", err)
	}
	return app, nil
}

func (s *ApplicationStore) Save(ctx context.Context, changes orchestrator.Changes) error {
	app := changes.Application
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if changes.New {
			if _, err := tx.ExecContext(ctx, insertApplication, applicationArgs(app)...); err != nil {
				return fmt.Errorf("insert application: %w", err)
			}
		} else {
			res, err := tx.ExecContext(ctx, updateApplication, applicationArgs(app)...)
			if err != nil {
				return fmt.Errorf("update application: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return apperrors.NewApplicationNotFoundError(app.ID.String())
			}
		}

		if uw := changes.Underwriting; uw != nil {
			query := updateUnderwriting
			if changes.UnderwritingNew {
				query = insertUnderwriting
			}
			if _, err := tx.ExecContext(ctx, query, underwritingArgs(uw)...); err != nil {
				return fmt.Errorf("save underwriting: %w", err)
			}
		}

		for _, h := range changes.History {
			if _, err := tx.ExecContext(ctx, insertHistory,
				h.ID, h.ApplicationID, string(h.FromStatus), string(h.ToStatus), h.Reason, h.ChangedBy, h.ChangedAt,
			); err != nil {
				return fmt.Errorf("insert status history: %w", err)
			}
		}

		for _, c := range changes.Conditions {
			if _, err := tx.ExecContext(ctx, insertCondition,
				c.ID, c.ApplicationID, c.Name, c.Description, string(c.Type), string(c.Status),
				nullTime(c.DueDate), nullTime(c.SatisfiedAt), c.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert condition: %w", err)
			}
		}

		for _, c := range changes.ConditionUpdates {
			if err := execOne(ctx, tx, "condition", updateCondition,
				c.ID, c.ApplicationID, string(c.Status), nullTime(c.SatisfiedAt),
			); err != nil {
				return err
			}
		}

		for _, d := range changes.Documents {
			if _, err := tx.ExecContext(ctx, insertDocument,
				d.ID, d.ApplicationID, d.Name, string(d.Type), string(d.Status), d.Notes,
				nullTime(d.RequestedAt), nullTime(d.ReceivedAt), nullTime(d.ApprovedAt),
			); err != nil {
				return fmt.Errorf("insert document: %w", err)
			}
		}

		for _, d := range changes.DocumentUpdates {
			if err := execOne(ctx, tx, "document", updateDocument,
				d.ID, d.ApplicationID, string(d.Status), nullTime(d.ReceivedAt), nullTime(d.ApprovedAt),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}

	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return apperrors.NewPersistenceFailedError("save application", err).
			WithMetadata("constraint", pqErr.Constraint)
	}
	return apperrors.NewPersistenceFailedError("save application", err)
}

// execOne runs an update that must touch exactly one child row.
func execOne(ctx context.Context, tx *sql.Tx, kind, query string, args ...interface{}) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return fmt.Errorf("update %s %v: %d rows affected", kind, args[0], n)
	}
	return nil
}

// List returns application rows without children.
func (s *ApplicationStore) List(ctx context.Context, filter orchestrator.ListFilter) ([]models.Application, error) {
	customer := uuid.NullUUID{}
	if filter.CustomerID != nil {
		customer = uuid.NullUUID{UUID: *filter.CustomerID, Valid: true}
	}
	status := sql.NullString{String: string(filter.Status), Valid: filter.Status != ""}

	rows, err := s.db.QueryContext(ctx, listApplications, customer, status)
	if err != nil {
		return nil, apperrors.NewPersistenceFailedError("list applications", err)
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceFailedError("list applications", err)
		}
		out = append(out, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceFailedError("list applications", err)
	}
	return out, nil
}

// NextSequence hands out application numbers per calendar year. The upsert
// serializes concurrent callers on the year's row.
func (s *ApplicationStore) NextSequence(ctx context.Context, year int) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, nextSequence, year).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next application sequence for %d: %w", year, err)
	}
	return next, nil
}

func (s *ApplicationStore) loadUnderwriting(ctx context.Context, applicationID uuid.UUID) (*models.Underwriting, error) {
	var (
		uw          models.Underwriting
		creditScore sql.NullInt64
		years       sql.NullInt64
		completedAt sql.NullTime
		decision    string
	)
	err := s.db.QueryRowContext(ctx, selectUnderwriting, applicationID).Scan(
		&uw.ID, &uw.ApplicationID,
		&creditScore, &uw.CreditRating, &uw.CreditApproved,
		&uw.GrossMonthlyIncome, &years, &uw.CalculatedDTI, &uw.IncomeVerified, &uw.EmploymentVerified,
		&uw.AppraisedValue, &uw.CalculatedLTV, &uw.PropertyApproved, &uw.TitleClear,
		&decision, &uw.Notes, &uw.UnderwriterName,
		&uw.CreatedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	uw.CreditScore = intPtr(creditScore)
	uw.YearsEmployed = intPtr(years)
	uw.CompletedAt = timePtr(completedAt)
	uw.Decision = models.UnderwritingDecision(decision)
	return &uw, nil
}

func (s *ApplicationStore) loadHistory(ctx context.Context, applicationID uuid.UUID) ([]models.StatusHistory, error) {
	rows, err := s.db.QueryContext(ctx, selectHistory, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StatusHistory
	for rows.Next() {
		var h models.StatusHistory
		var from, to string
		if err := rows.Scan(&h.ID, &h.ApplicationID, &from, &to, &h.Reason, &h.ChangedBy, &h.ChangedAt); err != nil {
			return nil, err
		}
		h.FromStatus = models.ApplicationStatus(from)
		h.ToStatus = models.ApplicationStatus(to)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *ApplicationStore) loadConditions(ctx context.Context, applicationID uuid.UUID) ([]models.Condition, error) {
	rows, err := s.db.QueryContext(ctx, selectConditions, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Condition
	for rows.Next() {
		var c models.Condition
		var typ, status string
		var due, satisfied sql.NullTime
		if err := rows.Scan(&c.ID, &c.ApplicationID, &c.Name, &c.Description, &typ, &status, &due, &satisfied, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Type = models.ConditionType(typ)
		c.Status = models.ConditionStatus(status)
		c.DueDate = timePtr(due)
		c.SatisfiedAt = timePtr(satisfied)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *ApplicationStore) loadDocuments(ctx context.Context, applicationID uuid.UUID) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx, selectDocuments, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		var typ, status string
		var requested, received, approved sql.NullTime
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.Name, &typ, &status, &d.Notes, &requested, &received, &approved); err != nil {
			return nil, err
		}
		d.Type = models.DocumentType(typ)
		d.Status = models.DocumentStatus(status)
		d.RequestedAt = timePtr(requested)
		d.ReceivedAt = timePtr(received)
		d.ApprovedAt = timePtr(approved)
		out = append(out, d)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app                      models.Application
		loanID                   uuid.NullUUID
		purpose, appType, status string
		submitted, uwStarted     sql.NullTime
		decision, closedAt       sql.NullTime
	)
	err := row.Scan(
		&app.ID, &app.ApplicationNumber, &app.CustomerID, &app.PropertyID, &loanID,
		&app.RequestedAmount, &app.DownPayment, &app.TermMonths, &purpose, &appType, &app.Notes,
		&app.LTV, &app.DTI, &app.OfferedInterestRate, &app.ApprovedLoanAmount,
		&status, &app.DecisionReason,
		&app.CreatedAt, &app.UpdatedAt, &submitted, &uwStarted, &decision, &closedAt,
	)
	if err != nil {
		return nil, err
	}

	if loanID.Valid {
		id := loanID.UUID
		app.LoanID = &id
	}
	app.Purpose = models.LoanPurpose(purpose)
	app.Type = models.ApplicationType(appType)
	app.Status = models.ApplicationStatus(status)
	app.SubmittedAt = timePtr(submitted)
	app.UnderwritingStartedAt = timePtr(uwStarted)
	app.DecisionAt = timePtr(decision)
	app.ClosedAt = timePtr(closedAt)
	return &app, nil
}

func applicationArgs(a *models.Application) []interface{} {
	loanID := uuid.NullUUID{}
	if a.LoanID != nil {
		loanID = uuid.NullUUID{UUID: *a.LoanID, Valid: true}
	}
	return []interface{}{
		a.ID, a.ApplicationNumber, a.CustomerID, a.PropertyID, loanID,
		a.RequestedAmount, a.DownPayment, a.TermMonths, string(a.Purpose), string(a.Type), a.Notes,
		a.LTV, a.DTI, a.OfferedInterestRate, a.ApprovedLoanAmount,
		string(a.Status), a.DecisionReason,
		a.CreatedAt, a.UpdatedAt,
		nullTime(a.SubmittedAt), nullTime(a.UnderwritingStartedAt), nullTime(a.DecisionAt), nullTime(a.ClosedAt),
	}
}

func underwritingArgs(u *models.Underwriting) []interface{} {
	return []interface{}{
		u.ID, u.ApplicationID,
		nullInt(u.CreditScore), u.CreditRating, u.CreditApproved,
		u.GrossMonthlyIncome, nullInt(u.YearsEmployed), u.CalculatedDTI, u.IncomeVerified, u.EmploymentVerified,
		u.AppraisedValue, u.CalculatedLTV, u.PropertyApproved, u.TitleClear,
		string(u.Decision), u.Notes, u.UnderwriterName,
		u.CreatedAt, nullTime(u.CompletedAt),
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
