// AngelaMos | 2026
// service.go

package franchise

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

// Create adds a franchise to the caller's company. When manager details are
// given the manager account is provisioned and attached in the same
// transaction, so an invalid manager leaves nothing behind.
func (s *Service) Create(
	ctx context.Context,
	caller scope.Caller,
	req CreateFranchiseRequest,
) (*Detail, error) {
	if !caller.IsOwner() {
		return nil, core.ForbiddenError("")
	}

	f := &Franchise{
		ID:          uuid.New().String(),
		CompanyID:   caller.CompanyID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}

	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if m := req.ManagerInfo; m != nil {
			manager, err := user.Provision(ctx, user.NewRepository(tx), user.NewAccount{
				Name:     m.Name,
				Email:    m.Email,
				Mobile:   m.Mobile,
				Password: m.Password,
				UserType: user.TypeFranchise,
				Group:    user.GroupFranchise,
			})
			if err != nil {
				return err
			}
			f.UserID = &manager.ID
		}

		return NewRepository(tx).Create(ctx, f)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "franchise created",
		"franchise_id", f.ID,
		"company_id", f.CompanyID,
		"with_manager", f.UserID != nil,
	)

	return s.repo.GetByID(ctx, f.ID)
}

func (s *Service) List(
	ctx context.Context,
	caller scope.Caller,
	params ListParams,
	page core.Page,
) ([]Detail, int, error) {
	if !caller.IsOwner() {
		return nil, 0, core.ForbiddenError("")
	}
	return s.repo.ListByCompany(ctx, caller.CompanyID, params, page)
}

// Get is open to the owning company and to the franchise's own manager.
func (s *Service) Get(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (*Detail, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !visible(caller, d) {
		return nil, fmt.Errorf("get franchise: %w", core.ErrNotFound)
	}

	return d, nil
}

func visible(caller scope.Caller, d *Detail) bool {
	switch caller.Kind {
	case scope.CompanyOwner:
		return d.CompanyID == caller.CompanyID
	case scope.FranchiseManager:
		return d.ID == caller.FranchiseID
	default:
		return false
	}
}

func (s *Service) Update(
	ctx context.Context,
	caller scope.Caller,
	id string,
	req UpdateFranchiseRequest,
) (*Detail, error) {
	d, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		d.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		d.Description = *req.Description
	}

	if err := s.repo.Update(ctx, &d.Franchise); err != nil {
		return nil, err
	}

	return d, nil
}

// Delete removes the franchise manager's account and then the franchise,
// atomically. Trucks of the franchise stay with the company.
func (s *Service) Delete(
	ctx context.Context,
	caller scope.Caller,
	id string,
) error {
	if !caller.IsOwner() {
		return core.ForbiddenError("")
	}

	d, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}

	err = core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if d.UserID != nil {
			if err := user.NewRepository(tx).Delete(ctx, *d.UserID); err != nil {
				return err
			}
		}
		return NewRepository(tx).Delete(ctx, d.ID)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "franchise deleted",
		"franchise_id", d.ID,
		"company_id", d.CompanyID,
	)

	return nil
}
