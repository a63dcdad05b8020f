// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateMeRequest struct {
	Name   *string `json:"name,omitempty"   validate:"omitempty,min=1,max=255"`
	Mobile *string `json:"mobile,omitempty" validate:"omitempty,min=3,max=255"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Mobile     *string   `json:"mobile,omitempty"`
	UserType   string    `json:"user_type"`
	Groups     []string  `json:"groups,omitempty"`
	DateJoined time.Time `json:"date_joined"`
}

// Summary is the compact user shape embedded in company and franchise
// payloads.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func ToUserResponse(u *User, groups []string) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Mobile:     u.Mobile,
		UserType:   u.UserType,
		Groups:     groups,
		DateJoined: u.DateJoined,
	}
}

func ToSummary(u *User) *Summary {
	if u == nil {
		return nil
	}
	return &Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}
