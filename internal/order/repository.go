// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/scope"
)

const numberConstraint = "orders_truck_number_key"

var ErrNumberTaken = errors.New("order number already issued")

type Repository interface {
	NextNumber(ctx context.Context, scopeKey, prefix string) (int64, error)
	NumberTaken(ctx context.Context, truckID, number string) (bool, error)
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, caller scope.Caller, id string) (*Detail, error)
	List(
		ctx context.Context,
		caller scope.Caller,
		params ListParams,
		page core.Page,
	) ([]Detail, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const (
	detailSelect = `
	SELECT o.id, o.truck_id, o.customer_id, o.item_id, o.order_number,
	       o.item_name, o.price, o.qty, o.total_price, o.created_at, o.updated_at,
	       t.name AS truck_name, cu.name AS customer_name, cu.email AS customer_email
	FROM orders o
	JOIN ice_cream_trucks t ON t.id = o.truck_id
	LEFT JOIN customers cu ON cu.id = o.customer_id`

	countSelect = `
	SELECT COUNT(*)
	FROM orders o
	JOIN ice_cream_trucks t ON t.id = o.truck_id
	LEFT JOIN customers cu ON cu.id = o.customer_id`
)

// NextNumber advances the counter of (scopeKey, prefix) and returns the
// new value. The counter row stays locked until the transaction ends, so
// concurrent orders in one scope are numbered one after another.
func (r *repository) NextNumber(
	ctx context.Context,
	scopeKey, prefix string,
) (int64, error) {
	query := `
		INSERT INTO order_sequences (scope_key, prefix, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (scope_key, prefix)
		DO UPDATE SET last_value = order_sequences.last_value + 1
		RETURNING last_value`

	var n int64
	if err := r.db.GetContext(ctx, &n, query, scopeKey, prefix); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return n, nil
}

// NumberTaken reports whether truckID already has an order numbered
// number. A truck whose franchise was removed moves to its company's
// counter and can meet numbers it issued before.
func (r *repository) NumberTaken(
	ctx context.Context,
	truckID, number string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM orders WHERE truck_id = $1 AND order_number = $2)`

	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, truckID, number); err != nil {
		return false, fmt.Errorf("check order number: %w", err)
	}
	return taken, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders
			(id, truck_id, customer_id, item_id, order_number, item_name,
			 price, qty, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		o.ID,
		o.TruckID,
		o.CustomerID,
		o.ItemID,
		o.OrderNumber,
		o.ItemName,
		o.Price,
		o.Qty,
		o.TotalPrice,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err, numberConstraint) {
			return fmt.Errorf("create order %s: %w", o.OrderNumber, ErrNumberTaken)
		}
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (*Detail, error) {
	var f core.Filter
	f.Add("o.id = $%d", id)
	caller.Restrict(&f, "t")

	var d Detail
	err := r.db.GetContext(ctx, &d, detailSelect+` WHERE `+f.Where(), f.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &d, nil
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
		f.Add("o.truck_id = $%d", params.TruckID)
	}
	if params.Search != "" {
		f.Add("(o.order_number ILIKE $%d OR cu.name ILIKE $%d)", core.Contains(params.Search))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSelect+` WHERE `+f.Where(), f.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	limit, args := f.Limit(page)
	query := detailSelect + `
		WHERE ` + f.Where() + `
		ORDER BY o.created_at DESC, o.order_number DESC ` + limit

	var details []Detail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return details, total, nil
}
