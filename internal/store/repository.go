// AngelaMos | 2026
// repository.go

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/scope"
)

const itemNameConstraint = "store_items_truck_name_key"

type Repository interface {
	CreateFlavor(ctx context.Context, f *Flavor) error
	GetFlavor(ctx context.Context, caller scope.Caller, id string) (*FlavorDetail, error)
	FlavorOnTruck(ctx context.Context, truckID, id string) (*Flavor, error)
	ListFlavors(
		ctx context.Context,
		caller scope.Caller,
		params FlavorListParams,
		page core.Page,
	) ([]FlavorDetail, int, error)
	UpdateFlavor(ctx context.Context, f *Flavor) error
	DeleteFlavor(ctx context.Context, id string) error

	CreateItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, caller scope.Caller, id string) (*ItemDetail, error)
	ItemNameTaken(ctx context.Context, truckID, name, exceptID string) (bool, error)
	ListItems(
		ctx context.Context,
		caller scope.Caller,
		params ItemListParams,
		page core.Page,
	) ([]ItemDetail, int, error)
	UpdateItem(ctx context.Context, it *Item, withQty bool) error
	DeleteItem(ctx context.Context, id string) error
	AddStock(ctx context.Context, id string, qty int) (int, error)

	LockItem(ctx context.Context, truckID, id string) (*Item, error)
	TakeStock(ctx context.Context, id string, qty int) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const (
	flavorSelect = `
	SELECT fl.id, fl.truck_id, fl.name, fl.created_at, fl.updated_at,
	       t.name AS truck_name
	FROM flavors fl
	JOIN ice_cream_trucks t ON t.id = fl.truck_id`

	itemSelect = `
	SELECT s.id, s.truck_id, s.flavor_id, s.name, s.description, s.qty,
	       s.price, s.created_at, s.updated_at,
	       t.name AS truck_name, fl.name AS flavor_name
	FROM store_items s
	JOIN ice_cream_trucks t ON t.id = s.truck_id
	LEFT JOIN flavors fl ON fl.id = s.flavor_id`

	itemCount = `
	SELECT COUNT(*)
	FROM store_items s
	JOIN ice_cream_trucks t ON t.id = s.truck_id
	LEFT JOIN flavors fl ON fl.id = s.flavor_id`
)

func (r *repository) CreateFlavor(ctx context.Context, f *Flavor) error {
	query := `
		INSERT INTO flavors (id, truck_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, f.ID, f.TruckID, f.Name).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create flavor: %w", err)
	}

	return nil
}

func (r *repository) GetFlavor(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (*FlavorDetail, error) {
	var f core.Filter
	f.Add("fl.id = $%d", id)
	caller.Restrict(&f, "t")

	var d FlavorDetail
	err := r.db.GetContext(ctx, &d, flavorSelect+` WHERE `+f.Where(), f.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get flavor: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get flavor: %w", err)
	}
	return &d, nil
}

// FlavorOnTruck loads a flavor only if it belongs to truckID. The truck
// itself must already have been checked against the caller.
func (r *repository) FlavorOnTruck(
	ctx context.Context,
	truckID, id string,
) (*Flavor, error) {
	query := `
		SELECT id, truck_id, name, created_at, updated_at
		FROM flavors
		WHERE id = $1 AND truck_id = $2`

	var f Flavor
	err := r.db.GetContext(ctx, &f, query, id, truckID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get flavor: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get flavor: %w", err)
	}
	return &f, nil
}

func (r *repository) ListFlavors(
	ctx context.Context,
	caller scope.Caller,
	params FlavorListParams,
	page core.Page,
) ([]FlavorDetail, int, error) {
	var f core.Filter
	caller.Restrict(&f, "t")
	if params.TruckID != "" {
		f.Add("fl.truck_id = $%d", params.TruckID)
	}
	if params.Search != "" {
		f.Add("fl.name ILIKE $%d", core.Contains(params.Search))
	}

	var total int
	countQuery := `
		SELECT COUNT(*) FROM flavors fl
		JOIN ice_cream_trucks t ON t.id = fl.truck_id
		WHERE ` + f.Where()
	if err := r.db.GetContext(ctx, &total, countQuery, f.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count flavors: %w", err)
	}

	limit, args := f.Limit(page)
	query := flavorSelect + `
		WHERE ` + f.Where() + `
		ORDER BY fl.created_at ` + limit

	var details []FlavorDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list flavors: %w", err)
	}

	return details, total, nil
}

func (r *repository) UpdateFlavor(ctx context.Context, f *Flavor) error {
	query := `
		UPDATE flavors SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &f.UpdatedAt, query, f.ID, f.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update flavor: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update flavor: %w", err)
	}

	return nil
}

func (r *repository) DeleteFlavor(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "flavors", "flavor", id)
}

func (r *repository) CreateItem(ctx context.Context, it *Item) error {
	query := `
		INSERT INTO store_items
			(id, truck_id, flavor_id, name, description, qty, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		it.ID,
		it.TruckID,
		it.FlavorID,
		it.Name,
		it.Description,
		it.Qty,
		it.Price,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err, itemNameConstraint) {
			return core.DuplicateDomainError(MsgItemExists)
		}
		return fmt.Errorf("create store item: %w", err)
	}

	return nil
}

func (r *repository) GetItem(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (*ItemDetail, error) {
	var f core.Filter
	f.Add("s.id = $%d", id)
	caller.Restrict(&f, "t")

	var d ItemDetail
	err := r.db.GetContext(ctx, &d, itemSelect+` WHERE `+f.Where(), f.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get store item: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get store item: %w", err)
	}
	return &d, nil
}

func (r *repository) ItemNameTaken(
	ctx context.Context,
	truckID, name, exceptID string,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM store_items
			WHERE truck_id = $1 AND name = $2 AND id::text <> $3
		)`

	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, truckID, name, exceptID); err != nil {
		return false, fmt.Errorf("check store item name: %w", err)
	}
	return taken, nil
}

func (r *repository) ListItems(
	ctx context.Context,
	caller scope.Caller,
	params ItemListParams,
	page core.Page,
) ([]ItemDetail, int, error) {
	var f core.Filter
	caller.Restrict(&f, "t")
	if params.TruckID != "" {
		f.Add("s.truck_id = $%d", params.TruckID)
	}
	if params.FlavorName != "" {
		f.Add("fl.name = $%d", params.FlavorName)
	}
	if params.Search != "" {
		f.Add("s.name ILIKE $%d", core.Contains(params.Search))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, itemCount+` WHERE `+f.Where(), f.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count store items: %w", err)
	}

	limit, args := f.Limit(page)
	query := itemSelect + `
		WHERE ` + f.Where() + `
		ORDER BY s.created_at ` + limit

	var details []ItemDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list store items: %w", err)
	}

	return details, total, nil
}

// UpdateItem writes the editable columns of it. qty is written only when
// withQty is set; the stored qty is always read back into it, so a sale
// committed since it was loaded is never undone.
func (r *repository) UpdateItem(ctx context.Context, it *Item, withQty bool) error {
	set := `truck_id = $2, flavor_id = $3, name = $4, description = $5, price = $6`
	args := []any{it.ID, it.TruckID, it.FlavorID, it.Name, it.Description, it.Price}
	if withQty {
		set += `, qty = $7`
		args = append(args, it.Qty)
	}

	query := `
		UPDATE store_items
		SET ` + set + `, updated_at = NOW()
		WHERE id = $1
		RETURNING qty, updated_at`

	err := r.db.QueryRowxContext(ctx, query, args...).Scan(&it.Qty, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update store item: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsDuplicateKeyError(err, itemNameConstraint) {
			return core.DuplicateDomainError(MsgItemExists)
		}
		return fmt.Errorf("update store item: %w", err)
	}

	return nil
}

func (r *repository) DeleteItem(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "store_items", "store item", id)
}

// AddStock increments qty in place and touches no other column.
func (r *repository) AddStock(ctx context.Context, id string, qty int) (int, error) {
	var after int
	err := r.db.GetContext(ctx, &after,
		`UPDATE store_items SET qty = qty + $2 WHERE id = $1 RETURNING qty`,
		id, qty,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("add stock: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("add stock: %w", err)
	}
	return after, nil
}

// LockItem row-locks an item of truckID until the surrounding
// transaction ends. It must run inside a transaction.
func (r *repository) LockItem(
	ctx context.Context,
	truckID, id string,
) (*Item, error) {
	query := `
		SELECT id, truck_id, flavor_id, name, description, qty, price,
		       created_at, updated_at
		FROM store_items
		WHERE id = $1 AND truck_id = $2
		FOR UPDATE`

	var it Item
	err := r.db.GetContext(ctx, &it, query, id, truckID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lock store item: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock store item: %w", err)
	}
	return &it, nil
}

func (r *repository) TakeStock(ctx context.Context, id string, qty int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE store_items SET qty = qty - $2 WHERE id = $1`,
		id, qty,
	)
	if err != nil {
		if core.IsCheckViolation(err) {
			return fmt.Errorf("take stock: %w", core.ErrInsufficientStock)
		}
		return fmt.Errorf("take stock: %w", err)
	}
	return nil
}

func deleteByID(ctx context.Context, db core.DBTX, table, resource, id string) error {
	//nolint:gosec // table is one of a fixed set of names
	result, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", resource, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", resource, err)
	}
	if rows == 0 {
		return fmt.Errorf("delete %s: %w", resource, core.ErrNotFound)
	}

	return nil
}
