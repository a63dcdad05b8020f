// AngelaMos | 2026
// entity.go

package truck

import (
	"time"
)

type Truck struct {
	ID           string    `db:"id"`
	CompanyID    string    `db:"company_id"`
	FranchiseID  *string   `db:"franchise_id"`
	Name         string    `db:"name"`
	Country      string    `db:"country"`
	State        string    `db:"state"`
	LocationName string    `db:"location_name"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Detail is a truck joined with the names of its owners.
type Detail struct {
	Truck
	CompanyName   string  `db:"company_name"`
	FranchiseName *string `db:"franchise_name"`
}
