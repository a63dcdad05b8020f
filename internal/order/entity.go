// AngelaMos | 2026
// entity.go

package order

import (
	"time"
)

// Order is immutable once placed. ItemName and Price are copies taken at
// placement and outlive the store item.
type Order struct {
	ID          string    `db:"id"`
	TruckID     string    `db:"truck_id"`
	CustomerID  *string   `db:"customer_id"`
	ItemID      *string   `db:"item_id"`
	OrderNumber string    `db:"order_number"`
	ItemName    string    `db:"item_name"`
	Price       float64   `db:"price"`
	Qty         int       `db:"qty"`
	TotalPrice  float64   `db:"total_price"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Detail struct {
	Order
	TruckName     string  `db:"truck_name"`
	CustomerName  *string `db:"customer_name"`
	CustomerEmail *string `db:"customer_email"`
}
