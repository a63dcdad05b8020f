// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	Mobile       *string   `db:"mobile"`
	Name         string    `db:"name"`
	UserType     string    `db:"user_type"`
	PasswordHash string    `db:"password_hash"`
	TokenVersion int       `db:"token_version"`
	DateJoined   time.Time `db:"date_joined"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsCompanyOwner() bool {
	return u.UserType == TypeCompanyOwner
}

const (
	TypeCompanyOwner = "company_owner"
	TypeFranchise    = "franchise"
)

const (
	GroupCompany   = "company"
	GroupFranchise = "franchise"
)
