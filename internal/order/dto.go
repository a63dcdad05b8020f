// AngelaMos | 2026
// dto.go

package order

import (
	"time"
)

const (
	MsgOrderPlaced = "ENJOY!"
	MsgInvalidQty  = "Order quantity must be greater than 0"
)

type PlaceOrderRequest struct {
	CustomerID string `json:"customer"        validate:"required,uuid"`
	TruckID    string `json:"ice_cream_truck" validate:"required,uuid"`
	ItemID     string `json:"item"            validate:"required,uuid"`
	Qty        int    `json:"qty"`
}

type ListParams struct {
	TruckID string
	Search  string
}

type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CustomerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type OrderResponse struct {
	ID          string       `json:"id"`
	OrderNumber string       `json:"order_number"`
	Truck       Ref          `json:"ice_cream_truck"`
	Customer    *CustomerRef `json:"customer"`
	ItemID      *string      `json:"item"`
	ItemName    string       `json:"item_name"`
	Price       float64      `json:"price"`
	Qty         int          `json:"qty"`
	TotalPrice  float64      `json:"total_price"`
	CreatedAt   time.Time    `json:"created_at"`
}

func ToOrderResponse(d *Detail) OrderResponse {
	resp := OrderResponse{
		ID:          d.ID,
		OrderNumber: d.OrderNumber,
		Truck:       Ref{ID: d.TruckID, Name: d.TruckName},
		ItemID:      d.ItemID,
		ItemName:    d.ItemName,
		Price:       d.Price,
		Qty:         d.Qty,
		TotalPrice:  d.TotalPrice,
		CreatedAt:   d.CreatedAt,
	}

	if d.CustomerID != nil {
		c := &CustomerRef{ID: *d.CustomerID}
		if d.CustomerName != nil {
			c.Name = *d.CustomerName
		}
		if d.CustomerEmail != nil {
			c.Email = *d.CustomerEmail
		}
		resp.Customer = c
	}

	return resp
}

func ToOrderResponseList(details []Detail) []OrderResponse {
	out := make([]OrderResponse, 0, len(details))
	for i := range details {
		out = append(out, ToOrderResponse(&details[i]))
	}
	return out
}
