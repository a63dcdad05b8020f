// AngelaMos | 2026
// provision.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/icetruck/internal/core"
)

const (
	msgEmailTaken  = "Email already exist inside our system"
	msgMobileTaken = "Mobile already exist inside our system"

	maxUsernameAttempts = 5
)

// NewAccount describes a login to create for a company owner or a
// franchise manager.
type NewAccount struct {
	Name     string
	Email    string
	Mobile   *string
	Password string
	UserType string
	Group    string
}

// Provision creates a user with a generated username and places it in
// acct.Group. Pass a repository bound to a transaction when the account is
// part of a larger unit of work.
func Provision(ctx context.Context, repo Repository, acct NewAccount) (*User, error) {
	email := NormalizeEmail(acct.Email)
	mobile := NormalizeMobile(acct.Mobile)

	taken, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, core.ValidationError(
			msgEmailTaken,
			map[string]string{"email": msgEmailTaken},
		)
	}

	if mobile != nil {
		taken, err = repo.ExistsByMobile(ctx, *mobile)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, core.ValidationError(
				msgMobileTaken,
				map[string]string{"mobile": msgMobileTaken},
			)
		}
	}

	username, err := uniqueUsername(ctx, repo)
	if err != nil {
		return nil, err
	}

	hash, err := core.HashPassword(acct.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		Mobile:       mobile,
		Name:         strings.TrimSpace(acct.Name),
		UserType:     acct.UserType,
		PasswordHash: hash,
	}

	if err := repo.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.DuplicateError("account")
		}
		return nil, err
	}

	if err := repo.AddGroup(ctx, u.ID, acct.Group); err != nil {
		return nil, err
	}

	return u, nil
}

func uniqueUsername(ctx context.Context, repo Repository) (string, error) {
	for range maxUsernameAttempts {
		candidate, err := core.GenerateUsername()
		if err != nil {
			return "", err
		}

		taken, err := repo.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", fmt.Errorf(
		"generate username: no free name after %d attempts",
		maxUsernameAttempts,
	)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeMobile maps a blank number to nil so the unique constraint only
// applies to numbers that were actually given.
func NormalizeMobile(mobile *string) *string {
	if mobile == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*mobile)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
