package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	activitystore "github.com/MrJamesThe3rd/upkeep/internal/activity/store"
	clientstore "github.com/MrJamesThe3rd/upkeep/internal/client/store"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	leadstore "github.com/MrJamesThe3rd/upkeep/internal/lead/store"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
	workorderstore "github.com/MrJamesThe3rd/upkeep/internal/workorder/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectEstimateColumns = `
	id, number, title, amount_cents, status, valid_until, client_id, property_id, lead_id,
	converted_work_order_id, created_at, updated_at
`

func scanEstimate(s database.Scanner) (*estimate.Estimate, error) {
	var e estimate.Estimate

	var status string

	if err := s.Scan(
		&e.ID, &e.Number, &e.Title, &e.AmountCents, &status, &e.ValidUntil, &e.ClientID, &e.PropertyID, &e.LeadID,
		&e.ConvertedWorkOrderID, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.Status = estimate.Status(status)

	return &e, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	query := `SELECT ` + selectEstimateColumns + ` FROM estimates WHERE id = $1`

	e, err := scanEstimate(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, estimate.ErrNotFound
		}

		return nil, fmt.Errorf("getting estimate: %w", err)
	}

	return e, nil
}

func (s *Store) List(ctx context.Context, filter estimate.ListFilter) ([]*estimate.Estimate, error) {
	query := `SELECT ` + selectEstimateColumns + ` FROM estimates WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing estimates: %w", err)
	}
	defer rows.Close()

	var estimates []*estimate.Estimate

	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning estimate: %w", err)
		}

		estimates = append(estimates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating estimate rows: %w", err)
	}

	return estimates, nil
}

type estimateTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (estimate.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning estimate tx: %w", err)
	}

	return &estimateTx{tx: dbTx}, nil
}

func (t *estimateTx) Commit() error   { return t.tx.Commit() }
func (t *estimateTx) Rollback() error { return t.tx.Rollback() }

func (t *estimateTx) NextNumber(ctx context.Context, prefix string, day time.Time) (string, error) {
	return database.NextCode(ctx, t.tx, prefix, day)
}

func (t *estimateTx) CheckReferences(ctx context.Context, refs estimate.Refs) error {
	if refs.ClientID != nil {
		if err := clientstore.Exists(ctx, t.tx, *refs.ClientID); err != nil {
			return err
		}
	}

	if refs.PropertyID != nil {
		if err := clientstore.PropertyExists(ctx, t.tx, *refs.PropertyID); err != nil {
			return err
		}
	}

	if refs.LeadID != nil {
		if err := leadstore.Exists(ctx, t.tx, *refs.LeadID); err != nil {
			return err
		}
	}

	return nil
}

func (t *estimateTx) Insert(ctx context.Context, e *estimate.Estimate) error {
	query := `
		INSERT INTO estimates (id, number, title, amount_cents, status, valid_until, client_id, property_id, lead_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		e.ID, e.Number, e.Title, e.AmountCents, e.Status, e.ValidUntil, e.ClientID, e.PropertyID, e.LeadID,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating estimate: %w", err)
	}

	return nil
}

func (t *estimateTx) Lock(ctx context.Context, id uuid.UUID) (*estimate.Estimate, error) {
	query := `SELECT ` + selectEstimateColumns + ` FROM estimates WHERE id = $1 FOR UPDATE`

	e, err := scanEstimate(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, estimate.ErrNotFound
		}

		return nil, fmt.Errorf("locking estimate: %w", err)
	}

	return e, nil
}

func (t *estimateTx) UpdateStatus(ctx context.Context, id uuid.UUID, status estimate.Status) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE estimates SET status = $1, updated_at = NOW() WHERE id = $2`, status, id); err != nil {
		return fmt.Errorf("updating estimate status: %w", err)
	}

	return nil
}

func (t *estimateTx) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM estimates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting estimate: %w", err)
	}

	return nil
}

func (t *estimateTx) GetWorkOrder(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	return workorderstore.Get(ctx, t.tx, id, false)
}

func (t *estimateTx) InsertWorkOrder(ctx context.Context, wo *workorder.WorkOrder) error {
	return workorderstore.Insert(ctx, t.tx, wo)
}

// MarkConverted only touches an estimate that has no work order yet; anything else means the
// caller lost the row lock invariant.
func (t *estimateTx) MarkConverted(ctx context.Context, id, workOrderID uuid.UUID) error {
	query := `
		UPDATE estimates
		SET status = 'converted', converted_work_order_id = $1, updated_at = NOW()
		WHERE id = $2 AND converted_work_order_id IS NULL
	`

	res, err := t.tx.ExecContext(ctx, query, workOrderID, id)
	if err != nil {
		return fmt.Errorf("marking estimate converted: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking estimate converted: %w", err)
	}

	if n != 1 {
		return fmt.Errorf("marking estimate converted: %d rows updated", n)
	}

	return nil
}

func (t *estimateTx) Record(ctx context.Context, e *activity.Entry) error {
	return activitystore.Insert(ctx, t.tx, e)
}
