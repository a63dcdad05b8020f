// AngelaMos | 2026
// entity.go

package franchise

import (
	"time"
)

type Franchise struct {
	ID          string    `db:"id"`
	CompanyID   string    `db:"company_id"`
	UserID      *string   `db:"user_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Detail is a franchise joined with its company name and manager contact.
type Detail struct {
	Franchise
	CompanyName  string  `db:"company_name"`
	ManagerName  *string `db:"manager_name"`
	ManagerEmail *string `db:"manager_email"`
}
