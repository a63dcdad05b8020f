// AngelaMos | 2026
// repository.go

package truck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/kpi"
	"github.com/carterperez-dev/icetruck/internal/scope"
)

type Repository interface {
	Create(ctx context.Context, t *Truck) error
	GetByID(ctx context.Context, caller scope.Caller, id string) (*Detail, error)
	List(
		ctx context.Context,
		caller scope.Caller,
		params ListParams,
		page core.Page,
	) ([]Detail, int, error)
	Update(ctx context.Context, t *Truck) error
	Delete(ctx context.Context, id string) error
	KPI(ctx context.Context, id string) (kpi.TruckKPI, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const (
	detailSelect = `
	SELECT t.id, t.company_id, t.franchise_id, t.name, t.country, t.state,
	       t.location_name, t.created_at, t.updated_at,
	       c.name AS company_name, fr.name AS franchise_name
	FROM ice_cream_trucks t
	JOIN companies c ON c.id = t.company_id
	LEFT JOIN franchises fr ON fr.id = t.franchise_id`

	countSelect = `
	SELECT COUNT(*)
	FROM ice_cream_trucks t
	LEFT JOIN franchises fr ON fr.id = t.franchise_id`
)

func (r *repository) Create(ctx context.Context, t *Truck) error {
	query := `
		INSERT INTO ice_cream_trucks
			(id, company_id, franchise_id, name, country, state, location_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		t.ID,
		t.CompanyID,
		t.FranchiseID,
		t.Name,
		t.Country,
		t.State,
		t.LocationName,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create truck: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (*Detail, error) {
	var f core.Filter
	f.Add("t.id = $%d", id)
	caller.Restrict(&f, "t")

	var d Detail
	err := r.db.GetContext(ctx, &d, detailSelect+` WHERE `+f.Where(), f.Args()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get truck: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get truck: %w", err)
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
	if params.Search != "" {
		f.Add("(t.name ILIKE $%d OR fr.name ILIKE $%d)", core.Contains(params.Search))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countSelect+` WHERE `+f.Where(), f.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count trucks: %w", err)
	}

	limit, args := f.Limit(page)
	query := detailSelect + `
		WHERE ` + f.Where() + `
		ORDER BY t.created_at DESC ` + limit

	var details []Detail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list trucks: %w", err)
	}

	return details, total, nil
}

func (r *repository) Update(ctx context.Context, t *Truck) error {
	query := `
		UPDATE ice_cream_trucks
		SET name = $2, country = $3, state = $4, location_name = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &t.UpdatedAt, query,
		t.ID,
		t.Name,
		t.Country,
		t.State,
		t.LocationName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update truck: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update truck: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ice_cream_trucks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete truck: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete truck: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete truck: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) KPI(ctx context.Context, id string) (kpi.TruckKPI, error) {
	query := `
		SELECT
			COALESCE((SELECT SUM(total_price) FROM orders WHERE truck_id = $1), 0),
			(SELECT COUNT(*) FROM customers WHERE truck_id = $1)`

	var v kpi.TruckKPI
	if err := r.db.QueryRowxContext(ctx, query, id).Scan(&v.TotalAmount, &v.Customers); err != nil {
		return kpi.TruckKPI{}, fmt.Errorf("truck kpi: %w", err)
	}
	return v, nil
}
