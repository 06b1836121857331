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
	"github.com/MrJamesThe3rd/upkeep/internal/invoice"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
	workorderstore "github.com/MrJamesThe3rd/upkeep/internal/workorder/store"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectInvoiceColumns = `
	id, number, amount_cents, status, issued_at, due_at, paid_at, client_id, work_order_id, notes,
	created_at, updated_at
`

const selectPaymentColumns = `
	id, invoice_id, amount_cents, processor, external_ref, notes, status, paid_at, created_at
`

func scanInvoice(s database.Scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var status string

	if err := s.Scan(
		&inv.ID, &inv.Number, &inv.AmountCents, &status, &inv.IssuedAt, &inv.DueAt, &inv.PaidAt,
		&inv.ClientID, &inv.WorkOrderID, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(status)

	return &inv, nil
}

func scanPayment(s database.Scanner) (*invoice.Payment, error) {
	var p invoice.Payment

	var status string

	if err := s.Scan(
		&p.ID, &p.InvoiceID, &p.AmountCents, &p.Processor, &p.ExternalRef, &p.Notes, &status, &p.PaidAt, &p.CreatedAt,
	); err != nil {
		return nil, err
	}

	p.Status = invoice.PaymentStatus(status)

	return &p, nil
}

func get(ctx context.Context, q database.Querier, query string, args ...any) (*invoice.Invoice, error) {
	inv, err := scanInvoice(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func settledTotal(ctx context.Context, q database.Querier, id uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE invoice_id = $1 AND status = 'settled'`

	var total int64
	if err := q.QueryRowContext(ctx, query, id).Scan(&total); err != nil {
		return 0, fmt.Errorf("summing settled payments: %w", err)
	}

	return total, nil
}

func listInvoices(ctx context.Context, q database.Querier, query string, args ...any) ([]*invoice.Invoice, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return get(ctx, s.db, `SELECT `+selectInvoiceColumns+` FROM invoices WHERE id = $1`, id)
}

func (s *Store) SettledTotal(ctx context.Context, id uuid.UUID) (int64, error) {
	return settledTotal(ctx, s.db, id)
}

func (s *Store) List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE TRUE`

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

	query += " ORDER BY issued_at DESC, number DESC"

	return listInvoices(ctx, s.db, query, args...)
}

func (s *Store) Payments(ctx context.Context, filter invoice.PaymentFilter) ([]*invoice.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + ` FROM payments WHERE TRUE`

	var args []any

	if filter.InvoiceID != nil {
		query += " AND invoice_id = $1"

		args = append(args, *filter.InvoiceID)
	}

	query += " ORDER BY paid_at DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*invoice.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

type invoiceTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (invoice.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning invoice tx: %w", err)
	}

	return &invoiceTx{tx: dbTx}, nil
}

func (t *invoiceTx) Commit() error   { return t.tx.Commit() }
func (t *invoiceTx) Rollback() error { return t.tx.Rollback() }

func (t *invoiceTx) NextNumber(ctx context.Context, prefix string, day time.Time) (string, error) {
	return database.NextCode(ctx, t.tx, prefix, day)
}

func (t *invoiceTx) CheckClient(ctx context.Context, id uuid.UUID) error {
	return clientstore.Exists(ctx, t.tx, id)
}

func (t *invoiceTx) Insert(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		INSERT INTO invoices (id, number, amount_cents, status, issued_at, due_at, client_id, work_order_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		inv.ID, inv.Number, inv.AmountCents, inv.Status, inv.IssuedAt, inv.DueAt, inv.ClientID, inv.WorkOrderID, inv.Notes,
	).Scan(&inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (t *invoiceTx) Lock(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return get(ctx, t.tx, `SELECT `+selectInvoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

func (t *invoiceTx) UpdateStatus(ctx context.Context, id uuid.UUID, status invoice.Status) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2`, status, id); err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}

	return nil
}

func (t *invoiceTx) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	return nil
}

func (t *invoiceTx) SettledTotal(ctx context.Context, id uuid.UUID) (int64, error) {
	return settledTotal(ctx, t.tx, id)
}

func (t *invoiceTx) InsertPayment(ctx context.Context, p *invoice.Payment) error {
	query := `
		INSERT INTO payments (id, invoice_id, amount_cents, processor, external_ref, notes, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.ID, p.InvoiceID, p.AmountCents, p.Processor, p.ExternalRef, p.Notes, p.Status, p.PaidAt,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}

	return nil
}

func (t *invoiceTx) UpdateSettlement(ctx context.Context, id uuid.UUID, status invoice.Status, paidAt *time.Time) error {
	query := `UPDATE invoices SET status = $1, paid_at = $2, updated_at = NOW() WHERE id = $3`

	if _, err := t.tx.ExecContext(ctx, query, status, paidAt, id); err != nil {
		return fmt.Errorf("updating invoice settlement: %w", err)
	}

	return nil
}

func (t *invoiceTx) LockWorkOrder(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	return workorderstore.Get(ctx, t.tx, id, true)
}

func (t *invoiceTx) FindByWorkOrder(ctx context.Context, workOrderID uuid.UUID) (*invoice.Invoice, error) {
	return get(ctx, t.tx, `SELECT `+selectInvoiceColumns+` FROM invoices WHERE work_order_id = $1`, workOrderID)
}

func (t *invoiceTx) LockDue(ctx context.Context, asOf time.Time) ([]*invoice.Invoice, error) {
	query := `
		SELECT ` + selectInvoiceColumns + `
		FROM invoices
		WHERE status = 'sent' AND due_at < $1
		ORDER BY due_at, number
		FOR UPDATE
	`

	return listInvoices(ctx, t.tx, query, asOf)
}

func (t *invoiceTx) Record(ctx context.Context, e *activity.Entry) error {
	return activitystore.Insert(ctx, t.tx, e)
}
