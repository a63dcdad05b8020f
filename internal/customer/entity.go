// AngelaMos | 2026
// entity.go

package customer

import (
	"time"
)

type Customer struct {
	ID        string    `db:"id"`
	TruckID   *string   `db:"truck_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Detail struct {
	Customer
	TruckName string `db:"truck_name"`
}
