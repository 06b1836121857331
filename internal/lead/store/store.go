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
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectLeadColumns = `
	id, name, email, phone, company, service, message, source, status, created_at, updated_at
`

// scanLead expects the columns of selectLeadColumns, in order.
func scanLead(s database.Scanner) (*lead.Lead, error) {
	var l lead.Lead

	var status string

	if err := s.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Service, &l.Message, &l.Source,
		&status, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}

	l.Status = lead.Status(status)

	return &l, nil
}

// Insert writes l using q. Callers outside this package use it to create leads inside their own
// transactions.
func Insert(ctx context.Context, q database.Querier, l *lead.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, company, service, message, source, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := q.QueryRowContext(ctx, query,
		l.ID, l.Name, l.Email, l.Phone, l.Company, l.Service, l.Message, l.Source, l.Status,
	).Scan(&l.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating lead: %w", err)
	}

	return nil
}

// Exists reports lead.ErrNotFound when no lead has the given id.
func Exists(ctx context.Context, q database.Querier, id uuid.UUID) error {
	var found bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1)`, id).Scan(&found); err != nil {
		return fmt.Errorf("checking lead: %w", err)
	}

	if !found {
		return lead.ErrNotFound
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	query := `SELECT ` + selectLeadColumns + ` FROM leads WHERE id = $1`

	l, err := scanLead(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lead.ErrNotFound
		}

		return nil, fmt.Errorf("getting lead: %w", err)
	}

	return l, nil
}

func (s *Store) List(ctx context.Context, filter lead.ListFilter) ([]*lead.Lead, error) {
	query := `SELECT ` + selectLeadColumns + ` FROM leads WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", argIdx, argIdx, argIdx)

		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	defer rows.Close()

	var leads []*lead.Lead

	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}

		leads = append(leads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lead rows: %w", err)
	}

	return leads, nil
}

type leadTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (lead.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning lead tx: %w", err)
	}

	return &leadTx{tx: dbTx}, nil
}

func (t *leadTx) Commit() error   { return t.tx.Commit() }
func (t *leadTx) Rollback() error { return t.tx.Rollback() }

func (t *leadTx) Insert(ctx context.Context, l *lead.Lead) error {
	return Insert(ctx, t.tx, l)
}

func (t *leadTx) Lock(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	query := `SELECT ` + selectLeadColumns + ` FROM leads WHERE id = $1 FOR UPDATE`

	l, err := scanLead(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lead.ErrNotFound
		}

		return nil, fmt.Errorf("locking lead: %w", err)
	}

	return l, nil
}

func (t *leadTx) UpdateStatus(ctx context.Context, id uuid.UUID, status lead.Status) error {
	query := `UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`

	if _, err := t.tx.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("updating lead status: %w", err)
	}

	return nil
}

func (t *leadTx) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting lead: %w", err)
	}

	return nil
}

func (t *leadTx) Record(ctx context.Context, e *activity.Entry) error {
	return activitystore.Insert(ctx, t.tx, e)
}
