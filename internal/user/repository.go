// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/icetruck/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	AddGroup(ctx context.Context, userID, group string) error
	Groups(ctx context.Context, userID string) ([]string, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByLogin(ctx context.Context, identifier string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByMobile(ctx context.Context, mobile string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type repository struct {
	db core.DBTX
}

// NewRepository binds queries to db, which may be the pool or an open
// transaction.
func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, username, email, mobile, name, user_type,
	password_hash, token_version, date_joined, updated_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, mobile, name, user_type, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING token_version, date_joined, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Mobile,
		user.Name,
		user.UserType,
		user.PasswordHash,
	).Scan(&user.TokenVersion, &user.DateJoined, &user.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err, "") {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) AddGroup(ctx context.Context, userID, group string) error {
	query := `
		INSERT INTO user_groups (user_id, group_name)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, group); err != nil {
		return fmt.Errorf("add user group: %w", err)
	}

	return nil
}

func (r *repository) Groups(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT group_name FROM user_groups
		WHERE user_id = $1
		ORDER BY group_name`

	var groups []string
	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}

	return groups, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// GetByLogin matches either the generated username or the email address.
func (r *repository) GetByLogin(
	ctx context.Context,
	identifier string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE username = $1 OR email = LOWER($1)
		LIMIT 1`

	var user User
	err := r.db.GetContext(ctx, &user, query, identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by login: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by login: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, mobile = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Name,
		user.Mobile,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsDuplicateKeyError(err, "users_mobile_key") {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "increment token version", query, id)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	return r.exists(ctx, "email", `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *repository) ExistsByMobile(
	ctx context.Context,
	mobile string,
) (bool, error) {
	return r.exists(ctx, "mobile", `SELECT EXISTS(SELECT 1 FROM users WHERE mobile = $1)`, mobile)
}

func (r *repository) ExistsByUsername(
	ctx context.Context,
	username string,
) (bool, error) {
	return r.exists(ctx, "username", `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *repository) exists(
	ctx context.Context,
	field, query string,
	arg any,
) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, arg); err != nil {
		return false, fmt.Errorf("check %s exists: %w", field, err)
	}
	return exists, nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
