package database

import (
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetupMigrationsCollectsEmbeddedFiles(t *testing.T) {
	require.NoError(t, SetupMigrations(zap.NewNop()))

	migrations, err := goose.CollectMigrations(MigrationsDir, 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, "migrations/0001_init.sql", migrations[0].Source)
}

func TestInitMigrationIsAnnotated(t *testing.T) {
	body, err := migrationFiles.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)

	sql := string(body)
	assert.Contains(t, sql, "-- +goose Up")
	assert.Contains(t, sql, "-- +goose Down")
	assert.Contains(t, sql, "ON DELETE RESTRICT")
	assert.Contains(t, sql, "guardians_one_primary_per_student")
}
