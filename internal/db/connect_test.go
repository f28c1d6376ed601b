package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteCreatesSchema(t *testing.T) {
	ctx := context.Background()
	dbh, err := Open(ctx, DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })

	_, err = dbh.ExecContext(ctx,
		`INSERT INTO attempts (id, source, status, responses_json, started_at) VALUES ('a1','q1.csv','in_progress','{}',1)`)
	require.NoError(t, err)

	var n int
	require.NoError(t, dbh.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts WHERE submitted_at IS NULL`).Scan(&n))
	assert.Equal(t, 1, n)

	// schema creation is repeatable
	require.NoError(t, ensureSchema(ctx, dbh, DriverSQLite))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), DriverMemory, "")
	assert.Error(t, err)
}
