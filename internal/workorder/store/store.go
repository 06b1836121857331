package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	activitystore "github.com/MrJamesThe3rd/upkeep/internal/activity/store"
	clientstore "github.com/MrJamesThe3rd/upkeep/internal/client/store"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
	employeestore "github.com/MrJamesThe3rd/upkeep/internal/employee/store"
	"github.com/MrJamesThe3rd/upkeep/internal/workorder"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectWorkOrderColumns = `
	w.id, w.code, w.title, w.description, w.priority, w.status, w.estimated_hours, w.actual_hours,
	w.value_cents, w.client_id, w.property_id, w.assigned_employee_id, w.created_at, w.updated_at
`

func scanWorkOrder(s database.Scanner) (*workorder.WorkOrder, error) {
	var wo workorder.WorkOrder

	var priority, status string

	if err := s.Scan(
		&wo.ID, &wo.Code, &wo.Title, &wo.Description, &priority, &status, &wo.EstimatedHours, &wo.ActualHours,
		&wo.ValueCents, &wo.ClientID, &wo.PropertyID, &wo.AssignedEmployeeID, &wo.CreatedAt, &wo.UpdatedAt,
	); err != nil {
		return nil, err
	}

	wo.Priority = workorder.Priority(priority)
	wo.Status = workorder.Status(status)

	return &wo, nil
}

// Insert writes wo using q, normally the transaction that allocated its code.
func Insert(ctx context.Context, q database.Querier, wo *workorder.WorkOrder) error {
	query := `
		INSERT INTO work_orders (
			id, code, title, description, priority, status, estimated_hours, actual_hours,
			value_cents, client_id, property_id, assigned_employee_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	err := q.QueryRowContext(ctx, query,
		wo.ID, wo.Code, wo.Title, wo.Description, wo.Priority, wo.Status, wo.EstimatedHours, wo.ActualHours,
		wo.ValueCents, wo.ClientID, wo.PropertyID, wo.AssignedEmployeeID,
	).Scan(&wo.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating work order: %w", err)
	}

	return nil
}

// Get reads one work order using q. With lock set the row stays locked until q's transaction
// ends.
func Get(ctx context.Context, q database.Querier, id uuid.UUID, lock bool) (*workorder.WorkOrder, error) {
	query := `SELECT ` + selectWorkOrderColumns + ` FROM work_orders w WHERE w.id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	wo, err := scanWorkOrder(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, workorder.ErrNotFound
		}

		return nil, fmt.Errorf("getting work order: %w", err)
	}

	return wo, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	return Get(ctx, s.db, id, false)
}

func (s *Store) List(ctx context.Context, filter workorder.ListFilter) ([]*workorder.WorkOrder, error) {
	query := `SELECT ` + selectWorkOrderColumns + ` FROM work_orders w WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND w.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.EmployeeID != nil {
		query += fmt.Sprintf(" AND w.assigned_employee_id = $%d", argIdx)

		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND w.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	query += " ORDER BY w.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing work orders: %w", err)
	}
	defer rows.Close()

	var orders []*workorder.WorkOrder

	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning work order: %w", err)
		}

		orders = append(orders, wo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating work order rows: %w", err)
	}

	return orders, nil
}

func (s *Store) ScheduleItems(ctx context.Context, workOrderID uuid.UUID) ([]*workorder.ScheduleItem, error) {
	query := `
		SELECT id, work_order_id, employee_id, starts_at, ends_at, notes, created_at
		FROM schedule_items
		WHERE work_order_id = $1
		ORDER BY starts_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, workOrderID)
	if err != nil {
		return nil, fmt.Errorf("listing schedule items: %w", err)
	}
	defer rows.Close()

	var items []*workorder.ScheduleItem

	for rows.Next() {
		var it workorder.ScheduleItem
		if err := rows.Scan(&it.ID, &it.WorkOrderID, &it.EmployeeID, &it.StartsAt, &it.EndsAt, &it.Notes, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning schedule item: %w", err)
		}

		items = append(items, &it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule item rows: %w", err)
	}

	return items, nil
}

func (s *Store) Board(ctx context.Context, from, to time.Time) ([]*workorder.BoardEntry, error) {
	query := `
		SELECT s.id, s.work_order_id, s.employee_id, s.starts_at, s.ends_at, s.notes, s.created_at,
			w.code, w.title, w.status, w.priority, COALESCE(e.name, '')
		FROM schedule_items s
		JOIN work_orders w ON w.id = s.work_order_id
		LEFT JOIN employees e ON e.id = s.employee_id
		WHERE s.starts_at >= $1 AND s.starts_at < $2
		ORDER BY s.starts_at ASC, w.code ASC
	`

	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing board: %w", err)
	}
	defer rows.Close()

	var board []*workorder.BoardEntry

	for rows.Next() {
		var b workorder.BoardEntry

		var status, priority string

		if err := rows.Scan(
			&b.ID, &b.WorkOrderID, &b.EmployeeID, &b.StartsAt, &b.EndsAt, &b.Notes, &b.CreatedAt,
			&b.Code, &b.Title, &status, &priority, &b.EmployeeName,
		); err != nil {
			return nil, fmt.Errorf("scanning board entry: %w", err)
		}

		b.Status = workorder.Status(status)
		b.Priority = workorder.Priority(priority)
		board = append(board, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating board rows: %w", err)
	}

	return board, nil
}

type workOrderTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (workorder.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning work order tx: %w", err)
	}

	return &workOrderTx{tx: dbTx}, nil
}

func (t *workOrderTx) Commit() error   { return t.tx.Commit() }
func (t *workOrderTx) Rollback() error { return t.tx.Rollback() }

func (t *workOrderTx) NextCode(ctx context.Context, prefix string, day time.Time) (string, error) {
	return database.NextCode(ctx, t.tx, prefix, day)
}

func (t *workOrderTx) CheckReferences(ctx context.Context, refs workorder.Refs) error {
	return CheckReferences(ctx, t.tx, refs)
}

// CheckReferences turns dangling client, property and employee ids into not-found errors
// instead of foreign key violations.
func CheckReferences(ctx context.Context, q database.Querier, refs workorder.Refs) error {
	if refs.ClientID != nil {
		if err := clientstore.Exists(ctx, q, *refs.ClientID); err != nil {
			return err
		}
	}

	if refs.PropertyID != nil {
		if err := clientstore.PropertyExists(ctx, q, *refs.PropertyID); err != nil {
			return err
		}
	}

	if refs.EmployeeID != nil {
		if err := employeestore.Exists(ctx, q, *refs.EmployeeID); err != nil {
			return err
		}
	}

	return nil
}

func (t *workOrderTx) Insert(ctx context.Context, wo *workorder.WorkOrder) error {
	return Insert(ctx, t.tx, wo)
}

func (t *workOrderTx) Lock(ctx context.Context, id uuid.UUID) (*workorder.WorkOrder, error) {
	return Get(ctx, t.tx, id, true)
}

func (t *workOrderTx) UpdateStatus(ctx context.Context, id uuid.UUID, status workorder.Status) error {
	if _, err := t.tx.ExecContext(ctx, `UPDATE work_orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id); err != nil {
		return fmt.Errorf("updating work order status: %w", err)
	}

	return nil
}

func (t *workOrderTx) Assign(ctx context.Context, id uuid.UUID, employeeID *uuid.UUID) error {
	query := `UPDATE work_orders SET assigned_employee_id = $1, updated_at = NOW() WHERE id = $2`

	if _, err := t.tx.ExecContext(ctx, query, employeeID, id); err != nil {
		return fmt.Errorf("assigning work order: %w", err)
	}

	return nil
}

func (t *workOrderTx) SetActualHours(ctx context.Context, id uuid.UUID, hours decimal.Decimal) error {
	query := `UPDATE work_orders SET actual_hours = $1, updated_at = NOW() WHERE id = $2`

	if _, err := t.tx.ExecContext(ctx, query, hours, id); err != nil {
		return fmt.Errorf("updating actual hours: %w", err)
	}

	return nil
}

func (t *workOrderTx) InsertScheduleItem(ctx context.Context, item *workorder.ScheduleItem) error {
	query := `
		INSERT INTO schedule_items (id, work_order_id, employee_id, starts_at, ends_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		item.ID, item.WorkOrderID, item.EmployeeID, item.StartsAt, item.EndsAt, item.Notes,
	).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating schedule item: %w", err)
	}

	return nil
}

func (t *workOrderTx) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM work_orders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting work order: %w", err)
	}

	return nil
}

func (t *workOrderTx) Record(ctx context.Context, e *activity.Entry) error {
	return activitystore.Insert(ctx, t.tx, e)
}
