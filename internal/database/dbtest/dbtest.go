// Package dbtest gives store tests a migrated Postgres schema of their own.
package dbtest

import (
	"database/sql"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/upkeep/internal/database"
)

// EnvURL names the variable holding a postgres:// URL. Tests that need a database skip without it.
const EnvURL = "UPKEEP_TEST_DATABASE_URL"

// SessionTimeZone is deliberately not UTC so queries that bucket by UTC are checked against a
// session that would shift them.
const SessionTimeZone = "America/Sao_Paulo"

// Open creates a throwaway schema, migrates it and returns a pool bound to it. The schema is
// dropped when the test ends, so packages running in parallel never see each other's rows.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	raw := os.Getenv(EnvURL)
	if raw == "" {
		t.Skipf("%s not set", EnvURL)
	}

	admin, err := database.New(raw, database.Options{MaxOpenConns: 2, MaxIdleConns: 1})
	require.NoError(t, err)

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	_, err = admin.Exec(`CREATE SCHEMA ` + schema)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = admin.Exec(`DROP SCHEMA ` + schema + ` CASCADE`)
		_ = admin.Close()
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	q.Set("search_path", schema)
	q.Set("TimeZone", SessionTimeZone)
	u.RawQuery = q.Encode()

	db, err := database.New(u.String(), database.Options{MaxOpenConns: 8, MaxIdleConns: 4})
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))

	return db
}
