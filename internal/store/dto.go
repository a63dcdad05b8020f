// AngelaMos | 2026
// dto.go

package store

import (
	"time"
)

const (
	MsgItemExists = "Ice cream with this name already exist inside your store"
	MsgStockAdded = "Stock added"
)

type CreateFlavorRequest struct {
	Name    string `json:"name"            validate:"required,max=255"`
	TruckID string `json:"ice_cream_truck" validate:"required,uuid"`
}

type UpdateFlavorRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
}

type FlavorListParams struct {
	TruckID string
	Search  string
}

type CreateItemRequest struct {
	Name        string  `json:"name"            validate:"required,max=255"`
	Description string  `json:"description"     validate:"max=2000"`
	Qty         int     `json:"qty"             validate:"gte=0"`
	Price       float64 `json:"price"           validate:"gte=0"`
	FlavorID    *string `json:"flavor"          validate:"omitempty,uuid"`
	TruckID     string  `json:"ice_cream_truck" validate:"required,uuid"`
}

type UpdateItemRequest struct {
	Name        *string  `json:"name,omitempty"            validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description,omitempty"     validate:"omitempty,max=2000"`
	Qty         *int     `json:"qty,omitempty"             validate:"omitempty,gte=0"`
	Price       *float64 `json:"price,omitempty"           validate:"omitempty,gte=0"`
	FlavorID    *string  `json:"flavor,omitempty"          validate:"omitempty,uuid"`
	TruckID     *string  `json:"ice_cream_truck,omitempty" validate:"omitempty,uuid"`
}

type AddStockRequest struct {
	Qty *int `json:"qty" validate:"required,gte=0"`
}

type ItemListParams struct {
	TruckID    string
	FlavorName string
	Search     string
}

type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FlavorResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Truck     Ref       `json:"ice_cream_truck"`
	CreatedAt time.Time `json:"created_at"`
}

type ItemResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Qty         int       `json:"qty"`
	Price       float64   `json:"price"`
	Flavor      *Ref      `json:"flavor"`
	Truck       Ref       `json:"ice_cream_truck"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToFlavorResponse(d *FlavorDetail) FlavorResponse {
	return FlavorResponse{
		ID:        d.ID,
		Name:      d.Name,
		Truck:     Ref{ID: d.TruckID, Name: d.TruckName},
		CreatedAt: d.CreatedAt,
	}
}

func ToFlavorResponseList(details []FlavorDetail) []FlavorResponse {
	out := make([]FlavorResponse, 0, len(details))
	for i := range details {
		out = append(out, ToFlavorResponse(&details[i]))
	}
	return out
}

func ToItemResponse(d *ItemDetail) ItemResponse {
	resp := ItemResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Qty:         d.Qty,
		Price:       d.Price,
		Truck:       Ref{ID: d.TruckID, Name: d.TruckName},
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}

	if d.FlavorID != nil {
		ref := &Ref{ID: *d.FlavorID}
		if d.FlavorName != nil {
			ref.Name = *d.FlavorName
		}
		resp.Flavor = ref
	}

	return resp
}

func ToItemResponseList(details []ItemDetail) []ItemResponse {
	out := make([]ItemResponse, 0, len(details))
	for i := range details {
		out = append(out, ToItemResponse(&details[i]))
	}
	return out
}
