// AngelaMos | 2026
// repository.go

package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/scope"
)

const nameConstraint = "customers_truck_name_key"

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, caller scope.Caller, id string) (*Detail, error)
	ExistsOnTruck(ctx context.Context, truckID, name string) (bool, error)
	List(
		ctx context.Context,
		caller scope.Caller,
		params ListParams,
		page core.Page,
	) ([]Detail, int, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Customers are only reachable through their truck, so every read joins
// ice_cream_trucks as t for the caller predicate.
const detailSelect = `
	SELECT c.id, c.truck_id, c.name, c.email, c.created_at, c.updated_at,
	       t.name AS truck_name
	FROM customers c
	JOIN ice_cream_trucks t ON t.id = c.truck_id`

func (r *repository) Create(ctx context.Context, c *Customer) error {
	query := `
		INSERT INTO customers (id, truck_id, name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.ID,
		c.TruckID,
		c.Name,
		c.Email,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err, nameConstraint) {
			return core.DuplicateDomainError(MsgCustomerExists)
		}
		return fmt.Errorf("create customer: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (*Detail, error) {
	var f core.Filter
	f.Add("c.id = $%d", id)
	caller.Restrict(&f, "t")

	var d Detail
	err := r.db.GetContext(ctx, &d, detailSelect+` WHERE `+f.Where(), f.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get customer: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &d, nil
}

func (r *repository) ExistsOnTruck(
	ctx context.Context,
	truckID, name string,
) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM customers WHERE truck_id = $1 AND name = $2)`
	if err := r.db.GetContext(ctx, &exists, query, truckID, name); err != nil {
		return false, fmt.Errorf("check customer name: %w", err)
	}
	return exists, nil
}

func (r *repository) List(
	ctx context.Context,
	caller scope.Caller,
	params ListParams,
	page core.Page,
) ([]Detail, int, error) {
	var f core.Filter
	caller.Restrict(&f, "t")
	if params.TruckID != "" {
		f.Add("c.truck_id = $%d", params.TruckID)
	}
	if params.Search != "" {
		f.Add("(c.name ILIKE $%d OR c.email ILIKE $%d)", core.Contains(params.Search))
	}

	var total int
	countQuery := `
		SELECT COUNT(*) FROM customers c
		JOIN ice_cream_trucks t ON t.id = c.truck_id
		WHERE ` + f.Where()
	if err := r.db.GetContext(ctx, &total, countQuery, f.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	limit, args := f.Limit(page)
	query := detailSelect + `
		WHERE ` + f.Where() + `
		ORDER BY c.created_at DESC ` + limit

	var details []Detail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}

	return details, total, nil
}

func (r *repository) Update(ctx context.Context, c *Customer) error {
	query := `
		UPDATE customers
		SET name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query, c.ID, c.Name, c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update customer: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsDuplicateKeyError(err, nameConstraint) {
			return core.DuplicateDomainError(MsgCustomerExists)
		}
		return fmt.Errorf("update customer: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete customer: %w", core.ErrNotFound)
	}

	return nil
}
