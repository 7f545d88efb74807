package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/baydesk/internal/database/repository"
)

func TestMigrateAndSeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	require.NoError(t, RunMigrations(dbPath))
	require.NoError(t, RunMigrations(dbPath), "second run is a no-op")

	v, dirty, err := MigrationVersion(dbPath)
	require.NoError(t, err)
	require.False(t, dirty)
	require.EqualValues(t, 1, v)

	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SeedDefaults(ctx, db))
	require.NoError(t, SeedDefaults(ctx, db))

	n, err := repository.NewModelRepo(db).Count(ctx, "")
	require.NoError(t, err)
	require.Equal(t, len(starterModels), n)

	n, err = repository.NewModelRepo(db).Count(ctx, "thinkpad")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestMigrationVersionOnFreshDatabase(t *testing.T) {
	t.Parallel()
	v, dirty, err := MigrationVersion(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	require.False(t, dirty)
	require.Zero(t, v)
}

func TestSeedDefaultsReportsCountFailure(t *testing.T) {
	t.Parallel()
	db, err := Open(filepath.Join(t.TempDir(), "unmigrated.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = SeedDefaults(context.Background(), db)
	require.ErrorContains(t, err, "count models")
}
