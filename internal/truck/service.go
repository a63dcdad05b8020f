// AngelaMos | 2026
// service.go

package truck

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/customer"
	"github.com/carterperez-dev/icetruck/internal/kpi"
	"github.com/carterperez-dev/icetruck/internal/scope"
)

type Service struct {
	repo      Repository
	customers *customer.Service
	kpis      *kpi.Cache
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	customers *customer.Service,
	kpis *kpi.Cache,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		kpis:      kpis,
		logger:    logger,
	}
}

// Create attaches the truck to the caller's company, or to the caller's
// franchise and its company when the caller manages one.
func (s *Service) Create(
	ctx context.Context,
	caller scope.Caller,
	req CreateTruckRequest,
) (*Detail, error) {
	t := Truck{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Country:      strings.TrimSpace(req.Country),
		State:        strings.TrimSpace(req.State),
		LocationName: strings.TrimSpace(req.LocationName),
	}

	switch caller.Kind {
	case scope.CompanyOwner:
		t.CompanyID = caller.CompanyID
	case scope.FranchiseManager:
		franchiseID := caller.FranchiseID
		t.CompanyID = caller.CompanyID
		t.FranchiseID = &franchiseID
	default:
		return nil, core.ForbiddenError(MsgNoTenant)
	}

	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "truck created",
		"truck_id", t.ID,
		"company_id", t.CompanyID,
		"caller", caller.Kind.String(),
	)

	return s.repo.GetByID(ctx, caller, t.ID)
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
	req UpdateTruckRequest,
) (*Detail, error) {
	d, err := s.repo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&d.Name, req.Name)
	apply(&d.Country, req.Country)
	apply(&d.State, req.State)
	apply(&d.LocationName, req.LocationName)

	if err := s.repo.Update(ctx, &d.Truck); err != nil {
		return nil, err
	}

	return d, nil
}

// Delete removes the truck together with its flavors, stock, customers
// and orders.
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

	s.kpis.Invalidate(ctx, d.ID)

	s.logger.InfoContext(ctx, "truck deleted",
		"truck_id", d.ID,
		"company_id", d.CompanyID,
	)

	return nil
}

func (s *Service) KPI(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (kpi.TruckKPI, error) {
	d, err := s.repo.GetByID(ctx, caller, id)
	if err != nil {
		return kpi.TruckKPI{}, err
	}

	return s.kpis.Get(ctx, d.ID, func(ctx context.Context) (kpi.TruckKPI, error) {
		return s.repo.KPI(ctx, d.ID)
	})
}

func (s *Service) AddCustomer(
	ctx context.Context,
	caller scope.Caller,
	id string,
	req customer.CreateCustomerRequest,
) (*customer.Detail, error) {
	d, err := s.repo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	return s.customers.AddToTruck(ctx, d.ID, d.Name, req)
}
