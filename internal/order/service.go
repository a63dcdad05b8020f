// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/customer"
	"github.com/carterperez-dev/icetruck/internal/kpi"
	"github.com/carterperez-dev/icetruck/internal/metrics"
	"github.com/carterperez-dev/icetruck/internal/scope"
	"github.com/carterperez-dev/icetruck/internal/store"
	"github.com/carterperez-dev/icetruck/internal/truck"
)

type Service struct {
	db      *sqlx.DB
	repo    Repository
	kpis    *kpi.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(
	db *sqlx.DB,
	kpis *kpi.Cache,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:      db,
		repo:    NewRepository(db),
		kpis:    kpis,
		metrics: m,
		logger:  logger,
	}
}

// PlaceOrder sells qty of a store item to a customer. Lookup, stock check,
// numbering, the order insert and the stock decrement share one
// transaction; the store item row is locked for its duration.
func (s *Service) PlaceOrder(
	ctx context.Context,
	caller scope.Caller,
	req PlaceOrderRequest,
) (*Detail, error) {
	if req.Qty <= 0 {
		return nil, core.ValidationError(MsgInvalidQty, map[string]string{
			"qty": MsgInvalidQty,
		})
	}

	ctx, span := core.StartSpan(ctx, "order.place",
		attribute.String("truck.id", req.TruckID),
		attribute.Int("order.qty", req.Qty),
	)
	defer span.End()

	var d *Detail
	err := core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		d, err = s.place(ctx, tx, caller, req)
		return err
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		if errors.Is(err, core.ErrInsufficientStock) {
			s.metrics.StockRejected()
		}
		return nil, err
	}

	s.metrics.OrderPlaced(d.TotalPrice)
	core.AddSpanEvent(ctx, "order.placed",
		attribute.String("order.number", d.OrderNumber),
		attribute.Float64("order.total", d.TotalPrice),
	)
	s.kpis.Invalidate(ctx, d.TruckID)

	s.logger.InfoContext(ctx, "order placed",
		"order_id", d.ID,
		"order_number", d.OrderNumber,
		"truck_id", d.TruckID,
		"qty", d.Qty,
		"total_price", d.TotalPrice,
	)

	return d, nil
}

func (s *Service) place(
	ctx context.Context,
	tx *sqlx.Tx,
	caller scope.Caller,
	req PlaceOrderRequest,
) (*Detail, error) {
	t, err := truck.NewRepository(tx).GetByID(ctx, caller, req.TruckID)
	if err != nil {
		return nil, notFoundAs(err, "truck")
	}

	c, err := customer.NewRepository(tx).GetByID(ctx, caller, req.CustomerID)
	if err != nil {
		return nil, notFoundAs(err, "customer")
	}

	items := store.NewRepository(tx)
	it, err := items.LockItem(ctx, t.ID, req.ItemID)
	if err != nil {
		return nil, notFoundAs(err, "store item")
	}

	if req.Qty > it.Qty || it.Qty == 0 {
		return nil, core.InsufficientStockError(req.Qty, it.Qty)
	}

	repo := NewRepository(tx)
	number, err := s.nextNumber(ctx, repo, &t.Truck)
	if err != nil {
		return nil, err
	}

	o := Order{
		ID:          uuid.New().String(),
		TruckID:     t.ID,
		CustomerID:  &c.ID,
		ItemID:      &it.ID,
		OrderNumber: number,
		ItemName:    it.Name,
		Price:       it.Price,
		Qty:         req.Qty,
		TotalPrice:  it.Price * float64(req.Qty),
	}

	if err := repo.Create(ctx, &o); err != nil {
		if errors.Is(err, ErrNumberTaken) {
			return nil, core.ConflictError("order number already issued, please retry")
		}
		return nil, err
	}

	if err := items.TakeStock(ctx, it.ID, req.Qty); err != nil {
		if errors.Is(err, core.ErrInsufficientStock) {
			return nil, core.InsufficientStockError(req.Qty, it.Qty)
		}
		return nil, err
	}

	return &Detail{
		Order:         o,
		TruckName:     t.Name,
		CustomerName:  &c.Name,
		CustomerEmail: &c.Email,
	}, nil
}

// nextNumber draws from the counter of the truck's owner until it yields
// a number the truck has not used yet.
func (s *Service) nextNumber(
	ctx context.Context,
	repo Repository,
	t *truck.Truck,
) (string, error) {
	prefix := Prefix(t.Name)
	key := scope.TruckScopeKey(t.CompanyID, t.FranchiseID)

	for {
		n, err := repo.NextNumber(ctx, key, prefix)
		if err != nil {
			return "", err
		}

		number := FormatNumber(prefix, n)
		taken, err := repo.NumberTaken(ctx, t.ID, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}

		s.logger.WarnContext(ctx, "order number already used, advancing",
			"truck_id", t.ID,
			"order_number", number,
		)
	}
}

func notFoundAs(err error, resource string) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.NotFoundError(resource)
	}
	return err
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
