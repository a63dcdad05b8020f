// AngelaMos | 2026
// service_test.go

package order

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/kpi"
	"github.com/carterperez-dev/icetruck/internal/metrics"
	"github.com/carterperez-dev/icetruck/internal/scope"
)

const (
	truckID    = "9d5c1f7e-1b61-4d8e-8d67-0c3a6f2b9e44"
	customerID = "3f9a4a53-51a4-4c43-a0a6-6b0b3b8c2d10"
	itemID     = "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
	orderID    = "6e5d4c3b-2a19-4087-b6a5-948372615041"
	companyID  = "c-1"
)

var owner = scope.Owner("u-1", companyID)

type fixture struct {
	svc     *Service
	mock    sqlmock.Sqlmock
	mr      *miniredis.Miniredis
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New("test")
	cache := kpi.NewCache(rdb, time.Minute, m, logger)

	return &fixture{
		svc:     NewService(sqlx.NewDb(db, "sqlmock"), cache, m, logger),
		mock:    mock,
		mr:      mr,
		metrics: m,
	}
}

func (f *fixture) expectLookups(truckName string, franchise any, stock int) {
	now := time.Now()

	f.mock.ExpectQuery(`FROM ice_cream_trucks t`).
		WithArgs(truckID, companyID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "franchise_id", "name", "country", "state",
			"location_name", "created_at", "updated_at", "company_name", "franchise_name",
		}).AddRow(truckID, companyID, franchise, truckName, "SE", "Stockholm",
			"Central", now, now, "John Doe AB", nil))

	f.mock.ExpectQuery(`FROM customers c`).
		WithArgs(customerID, companyID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "truck_id", "name", "email", "created_at", "updated_at", "truck_name",
		}).AddRow(customerID, truckID, "Jane", "jane@example.com", now, now, truckName))

	f.mock.ExpectQuery(`FROM store_items\s+WHERE id = \$1 AND truck_id = \$2\s+FOR UPDATE`).
		WithArgs(itemID, truckID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "truck_id", "flavor_id", "name", "description", "qty", "price",
			"created_at", "updated_at",
		}).AddRow(itemID, truckID, nil, "Shaved ice", "", stock, 1000.0, now, now))
}

func placeRequest(qty int) PlaceOrderRequest {
	return PlaceOrderRequest{
		CustomerID: customerID,
		TruckID:    truckID,
		ItemID:     itemID,
		Qty:        qty,
	}
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	f.mr.Set(kpi.Key(truckID), `{"total_amount":0,"customers":1}`)

	f.mock.ExpectBegin()
	f.expectLookups("Unit-1", nil, 10)
	f.mock.ExpectQuery(`INSERT INTO order_sequences`).
		WithArgs("company:c-1", "Un").
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(1))
	f.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM orders`).
		WithArgs(truckID, "Un-000001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	f.mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(sqlmock.AnyArg(), truckID, customerID, itemID, "Un-000001",
			"Shaved ice", 1000.0, 2, 2000.0).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))
	f.mock.ExpectExec(`UPDATE store_items SET qty = qty - \$2 WHERE id = \$1`).
		WithArgs(itemID, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	d, err := f.svc.PlaceOrder(context.Background(), owner, placeRequest(2))
	require.NoError(t, err)

	assert.Equal(t, "Un-000001", d.OrderNumber)
	assert.Equal(t, 2000.0, d.TotalPrice)
	assert.Equal(t, "Shaved ice", d.ItemName)
	assert.False(t, f.mr.Exists(kpi.Key(truckID)))
	assert.NoError(t, f.mock.ExpectationsWereMet())

	expected := `
# HELP test_orders_placed_total Orders committed.
# TYPE test_orders_placed_total counter
test_orders_placed_total 1
# HELP test_orders_revenue_total Sum of committed order totals.
# TYPE test_orders_revenue_total counter
test_orders_revenue_total 2000
`
	assert.NoError(t, testutil.GatherAndCompare(
		f.metrics.Registry(),
		strings.NewReader(expected),
		"test_orders_placed_total", "test_orders_revenue_total",
	))
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	tests := []struct {
		name  string
		stock int
		qty   int
	}{
		{"more than stocked", 8, 20},
		{"empty item", 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.mr.Set(kpi.Key(truckID), `{"total_amount":2000,"customers":1}`)

			f.mock.ExpectBegin()
			f.expectLookups("Unit-1", nil, tc.stock)
			f.mock.ExpectRollback()

			_, err := f.svc.PlaceOrder(context.Background(), owner, placeRequest(tc.qty))

			appErr, ok := core.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, "INSUFFICIENT_STOCK", appErr.Code)
			assert.True(t, f.mr.Exists(kpi.Key(truckID)), "cache untouched on failure")
			assert.NoError(t, f.mock.ExpectationsWereMet())

			expected := `
# HELP test_orders_stock_rejections_total Orders refused because the item had too little stock.
# TYPE test_orders_stock_rejections_total counter
test_orders_stock_rejections_total 1
`
			assert.NoError(t, testutil.GatherAndCompare(
				f.metrics.Registry(),
				strings.NewReader(expected),
				"test_orders_stock_rejections_total",
			))
		})
	}
}

func TestPlaceOrder_NonPositiveQty(t *testing.T) {
	f := newFixture(t)

	for _, qty := range []int{0, -3} {
		_, err := f.svc.PlaceOrder(context.Background(), owner, placeRequest(qty))

		appErr, ok := core.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, MsgInvalidQty, appErr.Message)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	}

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlaceOrder_ItemOfAnotherTruck(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM ice_cream_trucks t`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "company_id", "franchise_id", "name", "country", "state",
			"location_name", "created_at", "updated_at", "company_name", "franchise_name",
		}).AddRow(truckID, companyID, nil, "Unit-1", "", "", "", now, now, "Acme", nil))
	f.mock.ExpectQuery(`FROM customers c`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "truck_id", "name", "email", "created_at", "updated_at", "truck_name",
		}).AddRow(customerID, truckID, "Jane", "", now, now, "Unit-1"))
	f.mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	f.mock.ExpectRollback()

	_, err := f.svc.PlaceOrder(context.Background(), owner, placeRequest(1))

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "store item not found", appErr.Message)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlaceOrder_TruckOutsideScope(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`FROM ice_cream_trucks t`).
		WithArgs(truckID, "f-9").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	f.mock.ExpectRollback()

	_, err := f.svc.PlaceOrder(
		context.Background(),
		scope.Manager("u-2", "f-9", companyID),
		placeRequest(1),
	)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlaceOrder_FranchiseCounterSkipsUsedNumbers(t *testing.T) {
	f := newFixture(t)
	franchiseID := "f-1"

	f.mock.ExpectBegin()
	f.expectLookups("Unit-2", franchiseID, 5)
	f.mock.ExpectQuery(`INSERT INTO order_sequences`).
		WithArgs("franchise:f-1", "Un").
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(7))
	f.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM orders`).
		WithArgs(truckID, "Un-000007").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	f.mock.ExpectQuery(`INSERT INTO order_sequences`).
		WithArgs("franchise:f-1", "Un").
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(8))
	f.mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM orders`).
		WithArgs(truckID, "Un-000008").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	f.mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))
	f.mock.ExpectExec(`UPDATE store_items SET qty = qty - \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	d, err := f.svc.PlaceOrder(context.Background(), owner, placeRequest(1))
	require.NoError(t, err)
	assert.Equal(t, "Un-000008", d.OrderNumber)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlaceOrder_InsertFailureRollsBack(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.expectLookups("Unit-1", nil, 10)
	f.mock.ExpectQuery(`INSERT INTO order_sequences`).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(3))
	f.mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	f.mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnError(assert.AnError)
	f.mock.ExpectRollback()

	_, err := f.svc.PlaceOrder(context.Background(), owner, placeRequest(1))
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandler_Place(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.expectLookups("Unit-1", nil, 10)
	f.mock.ExpectQuery(`INSERT INTO order_sequences`).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(1))
	f.mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	f.mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))
	f.mock.ExpectExec(`UPDATE store_items`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r)

	body := `{"customer":"` + customerID + `","ice_cream_truck":"` + truckID +
		`","item":"` + itemID + `","qty":2}`
	req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
	req = req.WithContext(scope.WithCaller(req.Context(), owner))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string        `json:"message"`
		Data    OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, MsgOrderPlaced, resp.Message)
	assert.Equal(t, "Un-000001", resp.Data.OrderNumber)
	assert.Equal(t, 2000.0, resp.Data.TotalPrice)
	require.NotNil(t, resp.Data.Customer)
	assert.Equal(t, "Jane", resp.Data.Customer.Name)
}

func TestHandler_List_Search(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	f.mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM orders o`).
		WithArgs(companyID, "%jane%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	f.mock.ExpectQuery(`\(o.order_number ILIKE \$2 OR cu.name ILIKE \$2\)`).
		WithArgs(companyID, "%jane%", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "truck_id", "customer_id", "item_id", "order_number", "item_name",
			"price", "qty", "total_price", "created_at", "updated_at",
			"truck_name", "customer_name", "customer_email",
		}).AddRow(orderID, truckID, customerID, nil, "Un-000001", "Shaved ice",
			1000.0, 2, 2000.0, now, now, "Unit-1", "Jane", "jane@example.com"))

	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/order?search=jane", nil)
	req = req.WithContext(scope.WithCaller(req.Context(), owner))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"item":null`)
	assert.Contains(t, rec.Body.String(), `"item_name":"Shaved ice"`)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
