// AngelaMos | 2026
// service.go

package store

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/scope"
	"github.com/carterperez-dev/icetruck/internal/truck"
)

type Service struct {
	repo   Repository
	trucks truck.Repository
	logger *slog.Logger
}

func NewService(
	repo Repository,
	trucks truck.Repository,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:   repo,
		trucks: trucks,
		logger: logger,
	}
}

func (s *Service) CreateFlavor(
	ctx context.Context,
	caller scope.Caller,
	req CreateFlavorRequest,
) (*FlavorDetail, error) {
	t, err := s.trucks.GetByID(ctx, caller, req.TruckID)
	if err != nil {
		return nil, err
	}

	f := Flavor{
		ID:      uuid.New().String(),
		TruckID: t.ID,
		Name:    strings.TrimSpace(req.Name),
	}
	if err := s.repo.CreateFlavor(ctx, &f); err != nil {
		return nil, err
	}

	return &FlavorDetail{Flavor: f, TruckName: t.Name}, nil
}

func (s *Service) ListFlavors(
	ctx context.Context,
	caller scope.Caller,
	params FlavorListParams,
	page core.Page,
) ([]FlavorDetail, int, error) {
	return s.repo.ListFlavors(ctx, caller, params, page)
}

func (s *Service) GetFlavor(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (*FlavorDetail, error) {
	return s.repo.GetFlavor(ctx, caller, id)
}

func (s *Service) UpdateFlavor(
	ctx context.Context,
	caller scope.Caller,
	id string,
	req UpdateFlavorRequest,
) (*FlavorDetail, error) {
	d, err := s.repo.GetFlavor(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		d.Name = strings.TrimSpace(*req.Name)
	}

	if err := s.repo.UpdateFlavor(ctx, &d.Flavor); err != nil {
		return nil, err
	}

	return d, nil
}

// DeleteFlavor leaves items of the flavor in stock without a flavor.
func (s *Service) DeleteFlavor(
	ctx context.Context,
	caller scope.Caller,
	id string,
) error {
	d, err := s.repo.GetFlavor(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteFlavor(ctx, d.ID)
}

func (s *Service) CreateItem(
	ctx context.Context,
	caller scope.Caller,
	req CreateItemRequest,
) (*ItemDetail, error) {
	t, err := s.trucks.GetByID(ctx, caller, req.TruckID)
	if err != nil {
		return nil, err
	}

	it := Item{
		ID:          uuid.New().String(),
		TruckID:     t.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Qty:         req.Qty,
		Price:       req.Price,
	}

	d := &ItemDetail{TruckName: t.Name}

	if req.FlavorID != nil {
		f, err := s.repo.FlavorOnTruck(ctx, t.ID, *req.FlavorID)
		if err != nil {
			return nil, core.NotFoundError("flavor")
		}
		it.FlavorID = &f.ID
		d.FlavorName = &f.Name
	}

	taken, err := s.repo.ItemNameTaken(ctx, t.ID, it.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, core.DuplicateDomainError(MsgItemExists)
	}

	if err := s.repo.CreateItem(ctx, &it); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "store item created",
		"item_id", it.ID,
		"truck_id", it.TruckID,
		"qty", it.Qty,
	)

	d.Item = it
	return d, nil
}

func (s *Service) ListItems(
	ctx context.Context,
	caller scope.Caller,
	params ItemListParams,
	page core.Page,
) ([]ItemDetail, int, error) {
	return s.repo.ListItems(ctx, caller, params, page)
}

func (s *Service) GetItem(
	ctx context.Context,
	caller scope.Caller,
	id string,
) (*ItemDetail, error) {
	return s.repo.GetItem(ctx, caller, id)
}

// UpdateItem re-checks the truck, the flavor and the name whenever the
// resulting item differs from the stored one.
func (s *Service) UpdateItem(
	ctx context.Context,
	caller scope.Caller,
	id string,
	req UpdateItemRequest,
) (*ItemDetail, error) {
	d, err := s.repo.GetItem(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	truckChanged := req.TruckID != nil && *req.TruckID != d.TruckID
	if truckChanged {
		t, err := s.trucks.GetByID(ctx, caller, *req.TruckID)
		if err != nil {
			return nil, err
		}
		d.TruckID = t.ID
		d.TruckName = t.Name
	}

	if req.FlavorID != nil {
		d.FlavorID = req.FlavorID
	}
	if d.FlavorID != nil && (truckChanged || req.FlavorID != nil) {
		f, err := s.repo.FlavorOnTruck(ctx, d.TruckID, *d.FlavorID)
		if err != nil {
			return nil, core.NotFoundError("flavor")
		}
		d.FlavorName = &f.Name
	}

	nameChanged := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		nameChanged = name != d.Name
		d.Name = name
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Qty != nil {
		d.Qty = *req.Qty
	}
	if req.Price != nil {
		d.Price = *req.Price
	}

	if nameChanged || truckChanged {
		taken, err := s.repo.ItemNameTaken(ctx, d.TruckID, d.Name, d.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, core.DuplicateDomainError(MsgItemExists)
		}
	}

	if err := s.repo.UpdateItem(ctx, &d.Item, req.Qty != nil); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) DeleteItem(
	ctx context.Context,
	caller scope.Caller,
	id string,
) error {
	d, err := s.repo.GetItem(ctx, caller, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, d.ID)
}

func (s *Service) AddStock(
	ctx context.Context,
	caller scope.Caller,
	id string,
	qty int,
) (*ItemDetail, error) {
	if qty < 0 {
		return nil, core.ValidationError("Stock quantity must not be negative", nil)
	}

	d, err := s.repo.GetItem(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	after, err := s.repo.AddStock(ctx, d.ID, qty)
	if err != nil {
		return nil, err
	}
	d.Qty = after

	s.logger.InfoContext(ctx, "stock added",
		"item_id", d.ID,
		"added", qty,
		"qty", after,
	)

	return d, nil
}
