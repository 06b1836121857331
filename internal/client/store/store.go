package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	activitystore "github.com/MrJamesThe3rd/upkeep/internal/activity/store"
	"github.com/MrJamesThe3rd/upkeep/internal/client"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Lock takes a row lock on the client for the rest of q's transaction. It is the serialization
// point for invariants scoped to one client.
func Lock(ctx context.Context, q database.Querier, id uuid.UUID) error {
	var locked uuid.UUID

	err := q.QueryRowContext(ctx, `SELECT id FROM clients WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return client.ErrNotFound
		}

		return fmt.Errorf("locking client: %w", err)
	}

	return nil
}

// Exists reports client.ErrNotFound when no client has the given id.
func Exists(ctx context.Context, q database.Querier, id uuid.UUID) error {
	var found bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, id).Scan(&found); err != nil {
		return fmt.Errorf("checking client: %w", err)
	}

	if !found {
		return client.ErrNotFound
	}

	return nil
}

// PropertyExists reports client.ErrPropertyNotFound when no property has the given id.
func PropertyExists(ctx context.Context, q database.Querier, id uuid.UUID) error {
	var found bool
	if err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, id).Scan(&found); err != nil {
		return fmt.Errorf("checking property: %w", err)
	}

	if !found {
		return client.ErrPropertyNotFound
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	query := `SELECT id, name, email, phone, created_at, updated_at FROM clients WHERE id = $1`

	var c client.Client
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, client.ErrNotFound
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	return &c, nil
}

func (s *Store) List(ctx context.Context) ([]*client.Client, error) {
	query := `SELECT id, name, email, phone, created_at, updated_at FROM clients ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*client.Client

	for rows.Next() {
		var c client.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client rows: %w", err)
	}

	return clients, nil
}

func (s *Store) ListProperties(ctx context.Context, clientID uuid.UUID) ([]*client.Property, error) {
	query := `SELECT id, client_id, address, created_at FROM properties WHERE client_id = $1 ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer rows.Close()

	var props []*client.Property

	for rows.Next() {
		var p client.Property
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Address, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}

		props = append(props, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating property rows: %w", err)
	}

	return props, nil
}

type clientTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (client.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning client tx: %w", err)
	}

	return &clientTx{tx: dbTx}, nil
}

func (t *clientTx) Commit() error   { return t.tx.Commit() }
func (t *clientTx) Rollback() error { return t.tx.Rollback() }

func (t *clientTx) Insert(ctx context.Context, c *client.Client) error {
	query := `INSERT INTO clients (id, name, email, phone) VALUES ($1, $2, $3, $4) RETURNING created_at`

	if err := t.tx.QueryRowContext(ctx, query, c.ID, c.Name, c.Email, c.Phone).Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	return nil
}

func (t *clientTx) Exists(ctx context.Context, id uuid.UUID) error {
	return Exists(ctx, t.tx, id)
}

func (t *clientTx) InsertProperty(ctx context.Context, p *client.Property) error {
	query := `INSERT INTO properties (id, client_id, address) VALUES ($1, $2, $3) RETURNING created_at`

	if err := t.tx.QueryRowContext(ctx, query, p.ID, p.ClientID, p.Address).Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("creating property: %w", err)
	}

	return nil
}

func (t *clientTx) Record(ctx context.Context, e *activity.Entry) error {
	return activitystore.Insert(ctx, t.tx, e)
}
