// AngelaMos | 2026
// service.go

package customer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/kpi"
	"github.com/carterperez-dev/icetruck/internal/scope"
)

type Service struct {
	repo   Repository
	kpis   *kpi.Cache
	logger *slog.Logger
}

func NewService(repo Repository, kpis *kpi.Cache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		kpis:   kpis,
		logger: logger,
	}
}

// AddToTruck registers a customer on a truck the caller has already been
// checked against. Names are unique per truck.
func (s *Service) AddToTruck(
	ctx context.Context,
	truckID, truckName string,
	req CreateCustomerRequest,
) (*Detail, error) {
	name := strings.TrimSpace(req.Name)

	exists, err := s.repo.ExistsOnTruck(ctx, truckID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.DuplicateDomainError(MsgCustomerExists)
	}

	c := Customer{
		ID:      uuid.New().String(),
		TruckID: &truckID,
		Name:    name,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}

	s.kpis.Invalidate(ctx, truckID)

	s.logger.InfoContext(ctx, "customer added",
		"customer_id", c.ID,
		"truck_id", truckID,
	)

	return &Detail{Customer: c, TruckName: truckName}, nil
}

func (s *Service) List(
	ctx context.Context,
	caller scope.Caller,
	params ListParams,
	page core.Page,
) ([]Detail, int, error) {
	return s.repo.List(ctx, caller, params, page)
}

func (s *Service) Get(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (*Detail, error) {
	return s.repo.GetByID(ctx, caller, id)
}

func (s *Service) Update(
	ctx context.Context,
	caller scope.Caller,
	id string,
	req UpdateCustomerRequest,
) (*Detail, error) {
	d, err := s.repo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		d.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		d.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := s.repo.Update(ctx, &d.Customer); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) Delete(
	ctx context.Context,
	caller scope.Caller,
	id string,
) error {
	d, err := s.repo.GetByID(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, d.ID); err != nil {
		return err
	}

	if d.TruckID != nil {
		s.kpis.Invalidate(ctx, *d.TruckID)
	}

	s.logger.InfoContext(ctx, "customer deleted", "customer_id", d.ID)

	return nil
}
