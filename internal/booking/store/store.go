package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	activitystore "github.com/MrJamesThe3rd/upkeep/internal/activity/store"
	"github.com/MrJamesThe3rd/upkeep/internal/booking"
	clientstore "github.com/MrJamesThe3rd/upkeep/internal/client/store"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
	leadstore "github.com/MrJamesThe3rd/upkeep/internal/lead/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectBookingColumns = `
	id, name, email, phone, address, service, frequency, preferred_date, notes, source, status,
	lead_id, client_id, created_at, updated_at
`

func scanBooking(s database.Scanner) (*booking.Request, error) {
	var r booking.Request

	var status string

	if err := s.Scan(
		&r.ID, &r.Name, &r.Email, &r.Phone, &r.Address, &r.Service, &r.Frequency, &r.PreferredDate, &r.Notes,
		&r.Source, &status, &r.LeadID, &r.ClientID, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r.Status = booking.Status(status)

	return &r, nil
}

func get(ctx context.Context, q database.Querier, query string, id uuid.UUID) (*booking.Request, error) {
	r, err := scanBooking(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}

		return nil, fmt.Errorf("getting booking request: %w", err)
	}

	return r, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*booking.Request, error) {
	return get(ctx, s.db, `SELECT `+selectBookingColumns+` FROM booking_requests WHERE id = $1`, id)
}

func (s *Store) List(ctx context.Context, filter booking.ListFilter) ([]*booking.Request, error) {
	query := `SELECT ` + selectBookingColumns + ` FROM booking_requests WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.LeadID != nil {
		query += fmt.Sprintf(" AND lead_id = $%d", argIdx)

		args = append(args, *filter.LeadID)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing booking requests: %w", err)
	}
	defer rows.Close()

	var requests []*booking.Request

	for rows.Next() {
		r, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking request: %w", err)
		}

		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating booking rows: %w", err)
	}

	return requests, nil
}

type bookingTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (booking.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning booking tx: %w", err)
	}

	return &bookingTx{tx: dbTx}, nil
}

func (t *bookingTx) Commit() error   { return t.tx.Commit() }
func (t *bookingTx) Rollback() error { return t.tx.Rollback() }

func (t *bookingTx) LeadExists(ctx context.Context, id uuid.UUID) error {
	return leadstore.Exists(ctx, t.tx, id)
}

func (t *bookingTx) InsertLead(ctx context.Context, l *lead.Lead) error {
	return leadstore.Insert(ctx, t.tx, l)
}

func (t *bookingTx) ClientExists(ctx context.Context, id uuid.UUID) error {
	return clientstore.Exists(ctx, t.tx, id)
}

func (t *bookingTx) Insert(ctx context.Context, r *booking.Request) error {
	query := `
		INSERT INTO booking_requests (
			id, name, email, phone, address, service, frequency, preferred_date, notes, source, status, lead_id, client_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		r.ID, r.Name, r.Email, r.Phone, r.Address, r.Service, r.Frequency, r.PreferredDate, r.Notes, r.Source,
		r.Status, r.LeadID, r.ClientID,
	).Scan(&r.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating booking request: %w", err)
	}

	return nil
}

func (t *bookingTx) Lock(ctx context.Context, id uuid.UUID) (*booking.Request, error) {
	return get(ctx, t.tx, `SELECT `+selectBookingColumns+` FROM booking_requests WHERE id = $1 FOR UPDATE`, id)
}

func (t *bookingTx) UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status) error {
	query := `UPDATE booking_requests SET status = $1, updated_at = NOW() WHERE id = $2`

	if _, err := t.tx.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("updating booking status: %w", err)
	}

	return nil
}

func (t *bookingTx) Record(ctx context.Context, e *activity.Entry) error {
	return activitystore.Insert(ctx, t.tx, e)
}
