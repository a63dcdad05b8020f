// AngelaMos | 2026
// dto.go

package company

import (
	"time"

	"github.com/carterperez-dev/icetruck/internal/user"
)

const MsgAccountCreated = "Account created successfully"

type RegisterRequest struct {
	Name        string  `json:"name"         validate:"required,max=255"`
	CompanyName string  `json:"company_name" validate:"required,max=255"`
	Email       string  `json:"email"        validate:"required,email,max=255"`
	Mobile      *string `json:"mobile"       validate:"omitempty,max=255"`
	Password    string  `json:"password"     validate:"required,min=8,max=255"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type ListParams struct {
	Search string
}

type CompanyResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type RegisterResponse struct {
	User    user.UserResponse `json:"user"`
	Company CompanyResponse   `json:"company"`
}

func ToCompanyResponse(c *Company) CompanyResponse {
	return CompanyResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

func ToCompanyResponseList(companies []Company) []CompanyResponse {
	out := make([]CompanyResponse, 0, len(companies))
	for i := range companies {
		out = append(out, ToCompanyResponse(&companies[i]))
	}
	return out
}
