// AngelaMos | 2026
// repository.go

package company

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/icetruck/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id string) (*Company, error)
	GetByUserID(ctx context.Context, userID string) (*Company, error)
	ListForUser(
		ctx context.Context,
		userID string,
		params ListParams,
		page core.Page,
	) ([]Company, int, error)
	Update(ctx context.Context, c *Company) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const companyColumns = `id, user_id, name, description, created_at, updated_at`

func (r *repository) Create(ctx context.Context, c *Company) error {
	query := `
		INSERT INTO companies (id, user_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.ID,
		c.UserID,
		c.Name,
		c.Description,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Company, error) {
	return r.getOne(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
}

func (r *repository) GetByUserID(
	ctx context.Context,
	userID string,
) (*Company, error) {
	return r.getOne(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE user_id = $1`, userID)
}

func (r *repository) getOne(
	ctx context.Context,
	query string,
	arg any,
) (*Company, error) {
	var c Company
	err := r.db.GetContext(ctx, &c, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get company: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
	params ListParams,
	page core.Page,
) ([]Company, int, error) {
	var f core.Filter
	f.Add("user_id = $%d", userID)
	if params.Search != "" {
		f.Add("name ILIKE $%d", core.Contains(params.Search))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM companies WHERE ` + f.Where()
	if err := r.db.GetContext(ctx, &total, countQuery, f.Args()...); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	limit, args := f.Limit(page)
	query := `SELECT ` + companyColumns + `
		FROM companies
		WHERE ` + f.Where() + `
		ORDER BY created_at DESC ` + limit

	var companies []Company
	if err := r.db.SelectContext(ctx, &companies, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}

	return companies, total, nil
}

func (r *repository) Update(ctx context.Context, c *Company) error {
	query := `
		UPDATE companies
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID,
		c.Name,
		c.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update company: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}

	return nil
}
