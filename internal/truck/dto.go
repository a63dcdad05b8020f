// AngelaMos | 2026
// dto.go

package truck

import (
	"time"
)

const MsgNoTenant = "You currently do not have permission to perform this operation"

type CreateTruckRequest struct {
	Name         string `json:"name"          validate:"required,max=255"`
	Country      string `json:"country"       validate:"required,max=255"`
	State        string `json:"state"         validate:"required,max=255"`
	LocationName string `json:"location_name" validate:"required,max=255"`
}

type UpdateTruckRequest struct {
	Name         *string `json:"name,omitempty"          validate:"omitempty,min=1,max=255"`
	Country      *string `json:"country,omitempty"       validate:"omitempty,min=1,max=255"`
	State        *string `json:"state,omitempty"         validate:"omitempty,min=1,max=255"`
	LocationName *string `json:"location_name,omitempty" validate:"omitempty,min=1,max=255"`
}

type ListParams struct {
	Search string
}

type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TruckResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	State        string    `json:"state"`
	LocationName string    `json:"location_name"`
	Company      Ref       `json:"company"`
	Franchise    *Ref      `json:"franchise"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToTruckResponse(d *Detail) TruckResponse {
	resp := TruckResponse{
		ID:           d.ID,
		Name:         d.Name,
		Country:      d.Country,
		State:        d.State,
		LocationName: d.LocationName,
		Company:      Ref{ID: d.CompanyID, Name: d.CompanyName},
		CreatedAt:    d.CreatedAt,
	}

	if d.FranchiseID != nil {
		ref := &Ref{ID: *d.FranchiseID}
		if d.FranchiseName != nil {
			ref.Name = *d.FranchiseName
		}
		resp.Franchise = ref
	}

	return resp
}

func ToTruckResponseList(details []Detail) []TruckResponse {
	out := make([]TruckResponse, 0, len(details))
	for i := range details {
		out = append(out, ToTruckResponse(&details[i]))
	}
	return out
}
