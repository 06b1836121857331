package database

import (
	"context"
	"fmt"
	"time"
)

// NextCode allocates the next human-readable number for prefix on day, e.g. WO-20261019-007.
//
// Numbers come from a per-prefix, per-day counter bumped with an upsert, so two concurrent
// transactions can never draw the same value: the second blocks on the row lock until the first
// commits or rolls back. Call it with the transaction that creates the numbered record.
func NextCode(ctx context.Context, q Querier, prefix string, day time.Time) (string, error) {
	day = day.UTC()

	query := `
		INSERT INTO number_sequences (prefix, day, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, day) DO UPDATE SET last_value = number_sequences.last_value + 1
		RETURNING last_value
	`

	var n int64
	if err := q.QueryRowContext(ctx, query, prefix, day.Format(time.DateOnly)).Scan(&n); err != nil {
		return "", fmt.Errorf("allocating %s number: %w", prefix, err)
	}

	return FormatCode(prefix, day, n), nil
}

func FormatCode(prefix string, day time.Time, n int64) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, day.UTC().Format("20060102"), n)
}
