package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	activitystore "github.com/MrJamesThe3rd/upkeep/internal/activity/store"
	clientstore "github.com/MrJamesThe3rd/upkeep/internal/client/store"
	"github.com/MrJamesThe3rd/upkeep/internal/contact"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectPersonColumns = `id, client_id, name, email, phone, title, is_primary, created_at, updated_at`

func scanPerson(s database.Scanner) (*contact.Person, error) {
	var p contact.Person

	if err := s.Scan(
		&p.ID, &p.ClientID, &p.Name, &p.Email, &p.Phone, &p.Title, &p.IsPrimary, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*contact.Person, error) {
	query := `SELECT ` + selectPersonColumns + `
		FROM contacts
		WHERE client_id = $1
		ORDER BY is_primary DESC, name ASC`

	rows, err := s.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	defer rows.Close()

	var people []*contact.Person

	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}

		people = append(people, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contact rows: %w", err)
	}

	return people, nil
}

type contactTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (contact.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning contact tx: %w", err)
	}

	return &contactTx{tx: dbTx}, nil
}

func (t *contactTx) Commit() error   { return t.tx.Commit() }
func (t *contactTx) Rollback() error { return t.tx.Rollback() }

func (t *contactTx) LockClient(ctx context.Context, clientID uuid.UUID) error {
	return clientstore.Lock(ctx, t.tx, clientID)
}

func (t *contactTx) Get(ctx context.Context, id uuid.UUID) (*contact.Person, error) {
	query := `SELECT ` + selectPersonColumns + ` FROM contacts WHERE id = $1`

	p, err := scanPerson(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contact.ErrNotFound
		}

		return nil, fmt.Errorf("getting contact: %w", err)
	}

	return p, nil
}

func (t *contactTx) ClearPrimary(ctx context.Context, clientID, except uuid.UUID) error {
	query := `
		UPDATE contacts
		SET is_primary = FALSE, updated_at = NOW()
		WHERE client_id = $1 AND id <> $2 AND is_primary
	`

	if _, err := t.tx.ExecContext(ctx, query, clientID, except); err != nil {
		return fmt.Errorf("clearing primary contact: %w", err)
	}

	return nil
}

func (t *contactTx) Insert(ctx context.Context, p *contact.Person) error {
	query := `
		INSERT INTO contacts (id, client_id, name, email, phone, title, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.ID, p.ClientID, p.Name, p.Email, p.Phone, p.Title, p.IsPrimary,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating contact: %w", err)
	}

	return nil
}

func (t *contactTx) Update(ctx context.Context, p *contact.Person) error {
	query := `
		UPDATE contacts
		SET name = $1, email = $2, phone = $3, title = $4, is_primary = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := t.tx.QueryRowContext(ctx, query,
		p.Name, p.Email, p.Phone, p.Title, p.IsPrimary, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating contact: %w", err)
	}

	return nil
}

func (t *contactTx) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting contact: %w", err)
	}

	return nil
}

func (t *contactTx) Record(ctx context.Context, e *activity.Entry) error {
	return activitystore.Insert(ctx, t.tx, e)
}
