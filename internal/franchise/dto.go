// AngelaMos | 2026
// dto.go

package franchise

import (
	"time"

	"github.com/carterperez-dev/icetruck/internal/user"
)

const MsgFranchiseDeleted = "Franchise deleted successfully"

type ManagerInfo struct {
	Name     string  `json:"name"     validate:"required,max=255"`
	Email    string  `json:"email"    validate:"required,email,max=255"`
	Mobile   *string `json:"mobile"   validate:"omitempty,max=255"`
	Password string  `json:"password" validate:"required,min=8,max=255"`
}

type CreateFranchiseRequest struct {
	Name        string       `json:"name"         validate:"required,max=255"`
	Description string       `json:"description"  validate:"max=2000"`
	ManagerInfo *ManagerInfo `json:"manager_info" validate:"omitempty"`
}

type UpdateFranchiseRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type ListParams struct {
	Search string
}

type CompanyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FranchiseResponse struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Company     CompanyRef    `json:"company"`
	Manager     *user.Summary `json:"manager,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

func ToFranchiseResponse(d *Detail) FranchiseResponse {
	resp := FranchiseResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Company:     CompanyRef{ID: d.CompanyID, Name: d.CompanyName},
		CreatedAt:   d.CreatedAt,
	}

	if d.UserID != nil {
		m := &user.Summary{ID: *d.UserID}
		if d.ManagerName != nil {
			m.Name = *d.ManagerName
		}
		if d.ManagerEmail != nil {
			m.Email = *d.ManagerEmail
		}
		resp.Manager = m
	}

	return resp
}

func ToFranchiseResponseList(details []Detail) []FranchiseResponse {
	out := make([]FranchiseResponse, 0, len(details))
	for i := range details {
		out = append(out, ToFranchiseResponse(&details[i]))
	}
	return out
}
