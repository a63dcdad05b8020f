// AngelaMos | 2026
// repository.go

package franchise

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/icetruck/internal/core"
)

type Repository interface {
	Create(ctx context.Context, f *Franchise) error
	GetByID(ctx context.Context, id string) (*Detail, error)
	ListByCompany(
		ctx context.Context,
		companyID string,
		params ListParams,
		page core.Page,
	) ([]Detail, int, error)
	Update(ctx context.Context, f *Franchise) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const detailSelect = `
	SELECT f.id, f.company_id, f.user_id, f.name, f.description,
	       f.created_at, f.updated_at,
	       c.name AS company_name,
	       u.name AS manager_name, u.email AS manager_email
	FROM franchises f
	JOIN companies c ON c.id = f.company_id
	LEFT JOIN users u ON u.id = f.user_id`

func (r *repository) Create(ctx context.Context, f *Franchise) error {
	query := `
		INSERT INTO franchises (id, company_id, user_id, name, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		f.ID,
		f.CompanyID,
		f.UserID,
		f.Name,
		f.Description,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create franchise: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Detail, error) {
	var d Detail
	err := r.db.GetContext(ctx, &d, detailSelect+` WHERE f.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get franchise: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get franchise: %w", err)
	}
	return &d, nil
}

func (r *repository) ListByCompany(
	ctx context.Context,
	companyID string,
	params ListParams,
	page core.Page,
) ([]Detail, int, error) {
	var f core.Filter
	f.Add("f.company_id = $%d", companyID)
	if params.Search != "" {
		f.Add("f.name ILIKE $%d", core.Contains(params.Search))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM franchises f WHERE ` + f.Where()
	if err := r.db.GetContext(ctx, &total, countQuery, f.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count franchises: %w", err)
	}

	limit, args := f.Limit(page)
	query := detailSelect + `
		WHERE ` + f.Where() + `
		ORDER BY f.created_at DESC ` + limit

	var details []Detail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list franchises: %w", err)
	}

	return details, total, nil
}

func (r *repository) Update(ctx context.Context, f *Franchise) error {
	query := `
		UPDATE franchises
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &f.UpdatedAt, query, f.ID, f.Name, f.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update franchise: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update franchise: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM franchises WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete franchise: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete franchise: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete franchise: %w", core.ErrNotFound)
	}

	return nil
}
