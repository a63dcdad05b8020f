// AngelaMos | 2026
// repository_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/icetruck/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func nextToken() *RefreshToken {
	return &RefreshToken{
		ID:        "t-2",
		UserID:    "u-1",
		TokenHash: "h2",
		FamilyID:  "f-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestRepository_Rotate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO refresh_tokens`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`UPDATE refresh_tokens\s+SET is_used = true`).
		WithArgs("t-1", "t-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Rotate(context.Background(), "t-1", nextToken()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Rotate_AlreadyUsed(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO refresh_tokens`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`UPDATE refresh_tokens\s+SET is_used = true`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Rotate(context.Background(), "t-1", nextToken())
	assert.ErrorIs(t, err, ErrTokenReuse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByHash_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByHash(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_RevokeByID_Missing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE refresh_tokens\s+SET revoked_at = NOW\(\)`).
		WithArgs("t-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RevokeByID(context.Background(), "t-9")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_DeleteExpired(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE expires_at < \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteExpired(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
