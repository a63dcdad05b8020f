// AngelaMos | 2026
// integration_test.go

package order

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"

	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/customer"
	"github.com/carterperez-dev/icetruck/internal/kpi"
	"github.com/carterperez-dev/icetruck/internal/scope"
	"github.com/carterperez-dev/icetruck/internal/truck"
)

// openPostgres connects to TEST_DATABASE_URL and applies migrations, or
// skips the test when it is unset.
func openPostgres(t *testing.T) (*sqlx.DB, *slog.Logger) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err = core.Migrate(ctx, db, logger)
	require.NoError(t, err)

	return db, logger
}

// seed creates a company owner with one truck, one customer and one item
// holding stock units, and returns the caller and request template.
func seed(t *testing.T, db *sqlx.DB, stock int) (scope.Caller, PlaceOrderRequest) {
	t.Helper()
	ctx := context.Background()

	userID := uuid.New().String()
	companyID := uuid.New().String()
	truckID := uuid.New().String()
	customerID := uuid.New().String()
	itemID := uuid.New().String()

	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, 'x')`,
			[]any{userID, userID[:10], userID + "@example.com"}},
		{`INSERT INTO companies (id, user_id, name) VALUES ($1, $2, 'John Doe AB')`,
			[]any{companyID, userID}},
		{`INSERT INTO ice_cream_trucks (id, company_id, name, location_name) VALUES ($1, $2, 'Unit-1', 'Central')`,
			[]any{truckID, companyID}},
		{`INSERT INTO customers (id, truck_id, name, email) VALUES ($1, $2, 'Jane', 'jane@example.com')`,
			[]any{customerID, truckID}},
		{`INSERT INTO store_items (id, truck_id, name, qty, price) VALUES ($1, $2, 'Shaved ice', $3, 1000)`,
			[]any{itemID, truckID, stock}},
	}
	for _, s := range stmts {
		_, err := db.ExecContext(ctx, s.query, s.args...)
		require.NoError(t, err)
	}

	return scope.Owner(userID, companyID), PlaceOrderRequest{
		CustomerID: customerID,
		TruckID:    truckID,
		ItemID:     itemID,
		Qty:        1,
	}
}

func TestPlaceOrder_ConcurrentPostgres(t *testing.T) {
	db, logger := openPostgres(t)
	ctx := context.Background()

	const stock, buyers = 10, 25
	caller, req := seed(t, db, stock)
	svc := NewService(db, nil, nil, logger)

	var (
		mu       sync.Mutex
		numbers  []string
		rejected int
		wg       sync.WaitGroup
	)

	for n := 0; n < buyers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			d, err := svc.PlaceOrder(ctx, caller, req)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, core.ErrInsufficientStock)
				rejected++
				return
			}
			numbers = append(numbers, d.OrderNumber)
		}()
	}
	wg.Wait()

	require.Len(t, numbers, stock)
	assert.Equal(t, buyers-stock, rejected)

	sort.Strings(numbers)
	for i, n := range numbers {
		assert.Equal(t, FormatNumber("Un", int64(i+1)), n)
	}

	var left int
	require.NoError(t, db.GetContext(ctx, &left,
		`SELECT qty FROM store_items WHERE id = $1`, req.ItemID))
	assert.Zero(t, left)

	var sum float64
	require.NoError(t, db.GetContext(ctx, &sum,
		`SELECT COALESCE(SUM(total_price), 0) FROM orders WHERE truck_id = $1`, req.TruckID))
	assert.Equal(t, float64(stock*1000), sum)
}

func TestPlaceOrder_SaleThenOversellPostgres(t *testing.T) {
	db, logger := openPostgres(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kpis := kpi.NewCache(rdb, time.Minute, nil, logger)

	trucks := truck.NewService(
		truck.NewRepository(db),
		customer.NewService(customer.NewRepository(db), kpis, logger),
		kpis,
		logger,
	)
	orders := NewService(db, kpis, nil, logger)

	caller, req := seed(t, db, 10)

	before, err := trucks.KPI(ctx, caller, req.TruckID)
	require.NoError(t, err)
	assert.Zero(t, before.TotalAmount)
	assert.Equal(t, 1, before.Customers)

	req.Qty = 2
	d, err := orders.PlaceOrder(ctx, caller, req)
	require.NoError(t, err)
	assert.Equal(t, "Un-000001", d.OrderNumber)
	assert.Equal(t, 1000.0, d.Price)
	assert.Equal(t, 2000.0, d.TotalPrice)
	assert.Equal(t, "Shaved ice", d.ItemName)

	after, err := trucks.KPI(ctx, caller, req.TruckID)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, after.TotalAmount)
	assert.Equal(t, 1, after.Customers)

	req.Qty = 20
	_, err = orders.PlaceOrder(ctx, caller, req)
	assert.ErrorIs(t, err, core.ErrInsufficientStock)

	var left int
	require.NoError(t, db.GetContext(ctx, &left,
		`SELECT qty FROM store_items WHERE id = $1`, req.ItemID))
	assert.Equal(t, 8, left)

	final, err := trucks.KPI(ctx, caller, req.TruckID)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, final.TotalAmount)

	var placed int
	require.NoError(t, db.GetContext(ctx, &placed,
		`SELECT COUNT(*) FROM orders WHERE truck_id = $1`, req.TruckID))
	assert.Equal(t, 1, placed)
}
