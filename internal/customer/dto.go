// AngelaMos | 2026
// dto.go

package customer

import (
	"time"
)

const MsgCustomerExists = "Customer already exist in your account"

type CreateCustomerRequest struct {
	Name  string `json:"name"  validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

type UpdateCustomerRequest struct {
	Name  *string `json:"name,omitempty"  validate:"omitempty,min=1,max=255"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

type ListParams struct {
	TruckID string
	Search  string
}

type TruckRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Truck     *TruckRef `json:"ice_cream_truck,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func ToCustomerResponse(d *Detail) CustomerResponse {
	resp := CustomerResponse{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		CreatedAt: d.CreatedAt,
	}
	if d.TruckID != nil {
		resp.Truck = &TruckRef{ID: *d.TruckID, Name: d.TruckName}
	}
	return resp
}

func ToCustomerResponseList(details []Detail) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(details))
	for i := range details {
		out = append(out, ToCustomerResponse(&details[i]))
	}
	return out
}
