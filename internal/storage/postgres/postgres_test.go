package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arpg/internal/storage/postgres"
	"github.com/cory-johannsen/arpg/internal/testutil"
)

func tableExists(t *testing.T, pc *testutil.PostgresContainer) bool {
	t.Helper()
	var exists bool
	err := pc.RawPool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'encounter_history')`,
	).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestPool_Health(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	assert.NoError(t, pc.Pool.Health(context.Background(), 5*time.Second))
}

func TestMigrateUp_Idempotent(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	assert.False(t, tableExists(t, pc))

	require.NoError(t, postgres.MigrateUp(pc.DSN()))
	assert.True(t, tableExists(t, pc))
	assert.NoError(t, postgres.MigrateUp(pc.DSN()))
}

func TestNewMigrator_Down(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)

	m, err := postgres.NewMigrator(pc.DSN())
	require.NoError(t, err)
	defer m.Close()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, m.Down())
	assert.False(t, tableExists(t, pc))
}

func TestNewPool_Unreachable(t *testing.T) {
	cfg := testutil.UnreachableDatabase()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := postgres.NewPool(ctx, cfg)
	assert.Error(t, err)
}
