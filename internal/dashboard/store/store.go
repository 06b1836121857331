package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/upkeep/internal/dashboard"
	"github.com/MrJamesThe3rd/upkeep/internal/estimate"
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/lead"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// byStatus groups table by status. Table names come from this package only.
func byStatus[S ~string](ctx context.Context, db *sql.DB, table, amountColumn string, createdSince *time.Time) (map[S]dashboard.Totals, error) {
	amount := "0"
	if amountColumn != "" {
		amount = "COALESCE(SUM(" + amountColumn + "), 0)"
	}

	query := `SELECT status, COUNT(*), ` + amount + ` FROM ` + table

	var args []any

	if createdSince != nil {
		query += ` WHERE created_at >= $1`

		args = append(args, *createdSince)
	}

	query += ` GROUP BY status`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting %s by status: %w", table, err)
	}
	defer rows.Close()

	out := map[S]dashboard.Totals{}

	for rows.Next() {
		var (
			status string
			t      dashboard.Totals
		)

		if err := rows.Scan(&status, &t.Count, &t.AmountCents); err != nil {
			return nil, fmt.Errorf("scanning %s status count: %w", table, err)
		}

		out[S(status)] = t
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s status counts: %w", table, err)
	}

	return out, nil
}

func (s *Store) LeadsByStatus(ctx context.Context, createdSince *time.Time) (map[lead.Status]dashboard.Totals, error) {
	return byStatus[lead.Status](ctx, s.db, "leads", "", createdSince)
}

func (s *Store) EstimatesByStatus(ctx context.Context, createdSince *time.Time) (map[estimate.Status]dashboard.Totals, error) {
	return byStatus[estimate.Status](ctx, s.db, "estimates", "amount_cents", createdSince)
}

func (s *Store) WorkOrdersByStatus(ctx context.Context, createdSince *time.Time) (map[workorder.Status]dashboard.Totals, error) {
	return byStatus[workorder.Status](ctx, s.db, "work_orders", "value_cents", createdSince)
}

func (s *Store) InvoicesByStatus(ctx context.Context) (map[invoice.Status]dashboard.Totals, error) {
	return byStatus[invoice.Status](ctx, s.db, "invoices", "amount_cents", nil)
}

func (s *Store) PaidByMonth(ctx context.Context, from time.Time) (map[time.Time]int64, error) {
	query := `
		SELECT date_trunc('month', paid_at AT TIME ZONE 'UTC') AS month, SUM(amount_cents)
		FROM invoices
		WHERE status = 'paid' AND paid_at >= $1
		GROUP BY month
	`

	rows, err := s.db.QueryContext(ctx, query, from)
	if err != nil {
		return nil, fmt.Errorf("summing paid invoices by month: %w", err)
	}
	defer rows.Close()

	out := map[time.Time]int64{}

	for rows.Next() {
		var (
			month time.Time
			total int64
		)

		if err := rows.Scan(&month, &total); err != nil {
			return nil, fmt.Errorf("scanning monthly revenue: %w", err)
		}

		out[dashboard.MonthStart(month)] += total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monthly revenue: %w", err)
	}

	return out, nil
}

func (s *Store) Overdue(ctx context.Context, now time.Time) ([]*dashboard.OverdueInvoice, error) {
	query := `
		SELECT
			i.id, i.number, i.amount_cents, i.status, i.issued_at, i.due_at, i.paid_at, i.client_id,
			i.work_order_id, i.notes, i.created_at, i.updated_at,
			c.name,
			COALESCE((
				SELECT SUM(p.amount_cents) FROM payments p WHERE p.invoice_id = i.id AND p.status = 'settled'
			), 0)
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.due_at < $1 AND i.status IN ('sent', 'partial', 'overdue')
		ORDER BY i.due_at, i.number
	`

	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("listing overdue invoices: %w", err)
	}
	defer rows.Close()

	var out []*dashboard.OverdueInvoice

	for rows.Next() {
		var (
			inv    invoice.Invoice
			status string
			o      = dashboard.OverdueInvoice{Invoice: &inv}
		)

		if err := rows.Scan(
			&inv.ID, &inv.Number, &inv.AmountCents, &status, &inv.IssuedAt, &inv.DueAt, &inv.PaidAt, &inv.ClientID,
			&inv.WorkOrderID, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt, &o.ClientName, &o.SettledCents,
		); err != nil {
			return nil, fmt.Errorf("scanning overdue invoice: %w", err)
		}

		inv.Status = invoice.Status(status)
		out = append(out, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating overdue invoices: %w", err)
	}

	return out, nil
}

// TopClients ranks by paid total; equal totals keep the order clients were created in.
func (s *Store) TopClients(ctx context.Context, limit int) ([]*dashboard.ClientRevenue, error) {
	query := `
		SELECT c.id, c.name, SUM(i.amount_cents) AS paid, COUNT(*)
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE i.status = 'paid'
		GROUP BY c.id, c.name, c.created_at
		ORDER BY paid DESC, c.created_at, c.id
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking clients: %w", err)
	}
	defer rows.Close()

	var out []*dashboard.ClientRevenue

	for rows.Next() {
		var c dashboard.ClientRevenue
		if err := rows.Scan(&c.ClientID, &c.Name, &c.PaidCents, &c.InvoiceCount); err != nil {
			return nil, fmt.Errorf("scanning client revenue: %w", err)
		}

		out = append(out, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client revenue: %w", err)
	}

	return out, nil
}

func (s *Store) totals(ctx context.Context, query string, args ...any) (dashboard.Totals, error) {
	var t dashboard.Totals
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&t.Count, &t.AmountCents); err != nil {
		return dashboard.Totals{}, fmt.Errorf("summing invoices: %w", err)
	}

	return t, nil
}

func (s *Store) IssuedSince(ctx context.Context, from time.Time) (dashboard.Totals, error) {
	return s.totals(ctx, `SELECT COUNT(*), COALESCE(SUM(amount_cents), 0) FROM invoices WHERE issued_at >= $1`, from)
}

func (s *Store) PaidSince(ctx context.Context, from time.Time) (dashboard.Totals, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(amount_cents), 0) FROM invoices WHERE status = 'paid' AND paid_at >= $1`
	return s.totals(ctx, query, from)
}
