package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	activitystore "github.com/MrJamesThe3rd/upkeep/internal/activity/store"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
	employeestore "github.com/MrJamesThe3rd/upkeep/internal/employee/store"
	"github.com/MrJamesThe3rd/upkeep/internal/payroll"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectRunColumns = `id, period_start, period_end, total_gross_cents, created_at, updated_at`

func scanRun(s database.Scanner) (*payroll.Run, error) {
	var r payroll.Run

	if err := s.Scan(&r.ID, &r.PeriodStart, &r.PeriodEnd, &r.TotalGrossCents, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}

	return &r, nil
}

const selectEntryColumns = `
	pe.id, pe.run_id, pe.employee_id, COALESCE(e.name, ''), pe.hours, pe.gross_cents, pe.created_at, pe.updated_at
`

func scanEntry(s database.Scanner) (*payroll.Entry, error) {
	var e payroll.Entry

	if err := s.Scan(
		&e.ID, &e.RunID, &e.EmployeeID, &e.EmployeeName, &e.Hours, &e.GrossCents, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &e, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*payroll.Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+selectRunColumns+` FROM payroll_runs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payroll.ErrRunNotFound
		}

		return nil, fmt.Errorf("getting payroll run: %w", err)
	}

	return r, nil
}

func (s *Store) List(ctx context.Context) ([]*payroll.Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectRunColumns+` FROM payroll_runs ORDER BY period_start DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing payroll runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

func collectRuns(rows *sql.Rows) ([]*payroll.Run, error) {
	var runs []*payroll.Run

	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payroll run: %w", err)
		}

		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payroll run rows: %w", err)
	}

	return runs, nil
}

func (s *Store) Entries(ctx context.Context, runID uuid.UUID) ([]*payroll.Entry, error) {
	query := `
		SELECT ` + selectEntryColumns + `
		FROM payroll_entries pe
		LEFT JOIN employees e ON e.id = pe.employee_id
		WHERE pe.run_id = $1
		ORDER BY e.name, pe.created_at
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("listing payroll entries: %w", err)
	}
	defer rows.Close()

	var entries []*payroll.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payroll entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payroll entry rows: %w", err)
	}

	return entries, nil
}

type payrollTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (payroll.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning payroll tx: %w", err)
	}

	return &payrollTx{tx: dbTx}, nil
}

func (t *payrollTx) Commit() error   { return t.tx.Commit() }
func (t *payrollTx) Rollback() error { return t.tx.Rollback() }

func (t *payrollTx) InsertRun(ctx context.Context, r *payroll.Run) error {
	query := `
		INSERT INTO payroll_runs (id, period_start, period_end)
		VALUES ($1, $2, $3)
		RETURNING total_gross_cents, created_at
	`

	if err := t.tx.QueryRowContext(ctx, query, r.ID, r.PeriodStart, r.PeriodEnd).Scan(&r.TotalGrossCents, &r.CreatedAt); err != nil {
		return fmt.Errorf("creating payroll run: %w", err)
	}

	return nil
}

// LockRuns locks the runs in the order given; callers pass ids sorted.
func (t *payrollTx) LockRuns(ctx context.Context, ids ...uuid.UUID) ([]*payroll.Run, error) {
	runs := make([]*payroll.Run, 0, len(ids))

	for _, id := range ids {
		query := `SELECT ` + selectRunColumns + ` FROM payroll_runs WHERE id = $1 FOR UPDATE`

		r, err := scanRun(t.tx.QueryRowContext(ctx, query, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, payroll.ErrRunNotFound
			}

			return nil, fmt.Errorf("locking payroll run: %w", err)
		}

		runs = append(runs, r)
	}

	return runs, nil
}

func (t *payrollTx) AdjustTotal(ctx context.Context, runID uuid.UUID, deltaCents int64) error {
	query := `UPDATE payroll_runs SET total_gross_cents = total_gross_cents + $1, updated_at = NOW() WHERE id = $2`

	if _, err := t.tx.ExecContext(ctx, query, deltaCents, runID); err != nil {
		return fmt.Errorf("adjusting payroll total: %w", err)
	}

	return nil
}

func (t *payrollTx) EmployeeExists(ctx context.Context, id uuid.UUID) error {
	return employeestore.Exists(ctx, t.tx, id)
}

func (t *payrollTx) LockEntry(ctx context.Context, id uuid.UUID) (*payroll.Entry, error) {
	query := `
		SELECT ` + selectEntryColumns + `
		FROM payroll_entries pe
		LEFT JOIN employees e ON e.id = pe.employee_id
		WHERE pe.id = $1
		FOR UPDATE OF pe
	`

	e, err := scanEntry(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payroll.ErrEntryNotFound
		}

		return nil, fmt.Errorf("locking payroll entry: %w", err)
	}

	return e, nil
}

func (t *payrollTx) InsertEntry(ctx context.Context, e *payroll.Entry) error {
	query := `
		INSERT INTO payroll_entries (id, run_id, employee_id, hours, gross_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if err := t.tx.QueryRowContext(ctx, query, e.ID, e.RunID, e.EmployeeID, e.Hours, e.GrossCents).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("creating payroll entry: %w", err)
	}

	return nil
}

func (t *payrollTx) UpdateEntry(ctx context.Context, e *payroll.Entry) error {
	query := `
		UPDATE payroll_entries
		SET run_id = $1, hours = $2, gross_cents = $3, updated_at = NOW()
		WHERE id = $4
	`

	if _, err := t.tx.ExecContext(ctx, query, e.RunID, e.Hours, e.GrossCents, e.ID); err != nil {
		return fmt.Errorf("updating payroll entry: %w", err)
	}

	return nil
}

func (t *payrollTx) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM payroll_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting payroll entry: %w", err)
	}

	return nil
}

func (t *payrollTx) Record(ctx context.Context, e *activity.Entry) error {
	return activitystore.Insert(ctx, t.tx, e)
}
