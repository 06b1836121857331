package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/upkeep/internal/activity"
	"github.com/MrJamesThe3rd/upkeep/internal/database"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Insert appends e using q, which is normally the transaction of the mutation e describes.
func Insert(ctx context.Context, q database.Querier, e *activity.Entry) error {
	query := `
		INSERT INTO activity_log (actor_id, actor_name, action, entity_type, entity_id, description, severity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := q.QueryRowContext(ctx, query,
		e.ActorID,
		e.ActorName,
		e.Action,
		e.EntityType,
		e.EntityID,
		e.Description,
		e.Severity,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording activity: %w", err)
	}

	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]*activity.Entry, error) {
	query := `
		SELECT id, actor_id, actor_name, action, entity_type, entity_id, description, severity, created_at
		FROM activity_log
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	var entries []*activity.Entry

	for rows.Next() {
		var e activity.Entry
		if err := rows.Scan(
			&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.EntityType, &e.EntityID,
			&e.Description, &e.Severity, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity rows: %w", err)
	}

	return entries, nil
}
