// AngelaMos | 2026
// migrate_test.go

package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrationsOrdered(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
	assert.Equal(t, "0001_tenancy", migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE ice_cream_trucks")
}

func TestMigrateSkipsApplied(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := sqlx.NewDb(sqlDB, "sqlmock")

	migrations, err := LoadMigrations()
	require.NoError(t, err)

	applied := sqlmock.NewRows([]string{"version"}).AddRow(migrations[0].Version)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).
		WillReturnRows(applied)
	for _, m := range migrations[1:] {
		mock.ExpectBegin()
		mock.ExpectExec(`.+`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO schema_migrations`).
			WithArgs(m.Version).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n, err := Migrate(context.Background(), db, logger)
	require.NoError(t, err)
	assert.Equal(t, len(migrations)-1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := sqlx.NewDb(sqlDB, "sqlmock")

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(`.+`).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n, err := Migrate(context.Background(), db, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply 0001_tenancy")
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
