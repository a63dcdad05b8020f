// AngelaMos | 2026
// service.go

package company

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/scope"
	"github.com/carterperez-dev/icetruck/internal/user"
)

type Service struct {
	db     *sqlx.DB
	repo   Repository
	logger *slog.Logger
}

func NewService(db *sqlx.DB, logger *slog.Logger) *Service {
	return &Service{
		db:     db,
		repo:   NewRepository(db),
		logger: logger,
	}
}

// Register creates the owner account, its company and the company group
// membership together. Nothing is written when any step fails.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*RegisterResponse, error) {
	var (
		owner   *user.User
		company *Company
	)

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		owner, err = user.Provision(ctx, user.NewRepository(tx), user.NewAccount{
			Name:     req.Name,
			Email:    req.Email,
			Mobile:   req.Mobile,
			Password: req.Password,
			UserType: user.TypeCompanyOwner,
			Group:    user.GroupCompany,
		})
		if err != nil {
			return err
		}

		company = &Company{
			ID:     uuid.New().String(),
			UserID: owner.ID,
			Name:   strings.TrimSpace(req.CompanyName),
		}
		return NewRepository(tx).Create(ctx, company)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "company registered",
		"user_id", owner.ID,
		"company_id", company.ID,
	)

	return &RegisterResponse{
		User:    user.ToUserResponse(owner, []string{user.GroupCompany}),
		Company: ToCompanyResponse(company),
	}, nil
}

func (s *Service) List(
	ctx context.Context,
	caller scope.Caller,
	params ListParams,
	page core.Page,
) ([]Company, int, error) {
	if caller.UserID == "" {
		return nil, 0, nil
	}
	return s.repo.ListForUser(ctx, caller.UserID, params, page)
}

// Get returns a company only to its owner.
func (s *Service) Get(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (*Company, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.UserID != caller.UserID {
		return nil, fmt.Errorf("get company: %w", core.ErrNotFound)
	}

	return c, nil
}

func (s *Service) Update(
	ctx context.Context,
	caller scope.Caller,
	id string,
	req UpdateCompanyRequest,
) (*Company, error) {
	c, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}
