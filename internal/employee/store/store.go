package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	activitystore "github.com/MrJamesThe3rd/upkeep/internal/activity/store"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
	"github.com/MrJamesThe3rd/upkeep/internal/employee"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Exists reports employee.ErrNotFound when no employee has the given id.
func Exists(ctx context.Context, q database.Querier, id uuid.UUID) error {
	var found bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, id).Scan(&found); err != nil {
		return fmt.Errorf("checking employee: %w", err)
	}

	if !found {
		return employee.ErrNotFound
	}

	return nil
}

func (s *Store) Create(ctx context.Context, e *employee.Employee, entry *activity.Entry) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `INSERT INTO employees (id, name, email) VALUES ($1, $2, $3) RETURNING created_at`

	if err := dbTx.QueryRowContext(ctx, query, e.ID, e.Name, e.Email).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("creating employee: %w", err)
	}

	if err := activitystore.Insert(ctx, dbTx, entry); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]*employee.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, created_at FROM employees ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var employees []*employee.Employee

	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}

		employees = append(employees, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating employee rows: %w", err)
	}

	return employees, nil
}
