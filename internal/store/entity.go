// AngelaMos | 2026
// entity.go

package store

import (
	"time"
)

type Flavor struct {
	ID        string    `db:"id"`
	TruckID   string    `db:"truck_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type FlavorDetail struct {
	Flavor
	TruckName string `db:"truck_name"`
}

// Item is a stocked, priced product on one truck.
type Item struct {
	ID          string    `db:"id"`
	TruckID     string    `db:"truck_id"`
	FlavorID    *string   `db:"flavor_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Qty         int       `db:"qty"`
	Price       float64   `db:"price"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type ItemDetail struct {
	Item
	TruckName  string  `db:"truck_name"`
	FlavorName *string `db:"flavor_name"`
}
