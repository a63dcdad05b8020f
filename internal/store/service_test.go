// AngelaMos | 2026
// service_test.go

package store

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
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/scope"
	"github.com/carterperez-dev/icetruck/internal/truck"
)

const (
	truckID      = "9d5c1f7e-1b61-4d8e-8d67-0c3a6f2b9e44"
	otherTruckID = "0e7b6a2d-3c4f-4d1e-9a8b-7c6d5e4f3a2b"
	flavorID     = "5a1e2f3c-4b5d-4e6f-8a7b-9c0d1e2f3a4b"
	itemID       = "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
	companyID    = "c-1"
)

var (
	truckColumns = []string{
		"id", "company_id", "franchise_id", "name", "country", "state",
		"location_name", "created_at", "updated_at", "company_name", "franchise_name",
	}
	itemColumns = []string{
		"id", "truck_id", "flavor_id", "name", "description", "qty", "price",
		"created_at", "updated_at", "truck_name", "flavor_name",
	}
	owner = scope.Owner("u-1", companyID)
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dbx := sqlx.NewDb(db, "sqlmock")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewRepository(dbx), truck.NewRepository(dbx), logger), mock
}

func truckRow(id string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(truckColumns).AddRow(
		id, companyID, nil, "Unit-1", "SE", "Stockholm", "Central",
		now, now, "John Doe AB", nil,
	)
}

func itemRow(qty int, flavor any) *sqlmock.Rows {
	now := time.Now()
	var flavorName any
	if flavor != nil {
		flavorName = "Chocolate"
	}
	return sqlmock.NewRows(itemColumns).AddRow(
		itemID, truckID, flavor, "Shaved ice", "", qty, 1000.0,
		now, now, "Unit-1", flavorName,
	)
}

func flavorRow(truck string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "truck_id", "name", "created_at", "updated_at"}).
		AddRow(flavorID, truck, "Chocolate", now, now)
}

func TestCreateItem(t *testing.T) {
	svc, mock := newTestService(t)
	flavor := flavorID

	mock.ExpectQuery(`FROM ice_cream_trucks t`).
		WithArgs(truckID, companyID).
		WillReturnRows(truckRow(truckID))
	mock.ExpectQuery(`FROM flavors\s+WHERE id = \$1 AND truck_id = \$2`).
		WithArgs(flavorID, truckID).
		WillReturnRows(flavorRow(truckID))
	mock.ExpectQuery(`SELECT EXISTS\(\s+SELECT 1 FROM store_items`).
		WithArgs(truckID, "Shaved ice", "").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO store_items`).
		WithArgs(sqlmock.AnyArg(), truckID, flavorID, "Shaved ice", "", 10, 1000.0).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	d, err := svc.CreateItem(context.Background(), owner, CreateItemRequest{
		Name:     "Shaved ice",
		Qty:      10,
		Price:    1000,
		FlavorID: &flavor,
		TruckID:  truckID,
	})
	require.NoError(t, err)

	resp := ToItemResponse(d)
	require.NotNil(t, resp.Flavor)
	assert.Equal(t, "Chocolate", resp.Flavor.Name)
	assert.Equal(t, "Unit-1", resp.Truck.Name)
	assert.Equal(t, 10, resp.Qty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItem_DuplicateName(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM ice_cream_trucks t`).WillReturnRows(truckRow(truckID))
	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.CreateItem(context.Background(), owner, CreateItemRequest{
		Name:    "Shaved ice",
		TruckID: truckID,
	})

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, MsgItemExists, appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItem_FlavorOfAnotherTruck(t *testing.T) {
	svc, mock := newTestService(t)
	flavor := flavorID

	mock.ExpectQuery(`FROM ice_cream_trucks t`).WillReturnRows(truckRow(truckID))
	mock.ExpectQuery(`FROM flavors`).
		WithArgs(flavorID, truckID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.CreateItem(context.Background(), owner, CreateItemRequest{
		Name:     "Shaved ice",
		FlavorID: &flavor,
		TruckID:  truckID,
	})

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, "flavor not found", appErr.Message)
}

func TestCreateItem_TruckOutsideScope(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM ice_cream_trucks t`).
		WithArgs(truckID, "f-1").
		WillReturnRows(sqlmock.NewRows(truckColumns))

	_, err := svc.CreateItem(
		context.Background(),
		scope.Manager("u-2", "f-1", companyID),
		CreateItemRequest{Name: "Shaved ice", TruckID: truckID},
	)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateItem_MovingTruckRechecksFlavor(t *testing.T) {
	svc, mock := newTestService(t)
	target := otherTruckID

	mock.ExpectQuery(`FROM store_items s`).WillReturnRows(itemRow(10, flavorID))
	mock.ExpectQuery(`FROM ice_cream_trucks t`).
		WithArgs(otherTruckID, companyID).
		WillReturnRows(truckRow(otherTruckID))
	mock.ExpectQuery(`FROM flavors`).
		WithArgs(flavorID, otherTruckID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.UpdateItem(context.Background(), owner, itemID, UpdateItemRequest{
		TruckID: &target,
	})

	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItem_Rename(t *testing.T) {
	svc, mock := newTestService(t)
	name := "Cone"
	price := 1200.0

	mock.ExpectQuery(`FROM store_items s`).WillReturnRows(itemRow(10, nil))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(truckID, "Cone", itemID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`description = \$5, price = \$6, updated_at = NOW\(\)`).
		WithArgs(itemID, truckID, nil, "Cone", "", 1200.0).
		WillReturnRows(sqlmock.NewRows([]string{"qty", "updated_at"}).AddRow(10, time.Now()))

	d, err := svc.UpdateItem(context.Background(), owner, itemID, UpdateItemRequest{
		Name:  &name,
		Price: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cone", d.Name)
	assert.Equal(t, 1200.0, d.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItem_PriceKeepsConcurrentSale(t *testing.T) {
	svc, mock := newTestService(t)
	price := 1500.0

	// Loaded with qty 10; an order takes 3 before the update lands.
	mock.ExpectQuery(`FROM store_items s`).WillReturnRows(itemRow(10, nil))
	mock.ExpectQuery(`UPDATE store_items`).
		WithArgs(itemID, truckID, nil, "Shaved ice", "", 1500.0).
		WillReturnRows(sqlmock.NewRows([]string{"qty", "updated_at"}).AddRow(7, time.Now()))

	d, err := svc.UpdateItem(context.Background(), owner, itemID, UpdateItemRequest{
		Price: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, d.Qty)
	assert.Equal(t, 1500.0, d.Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItem_ExplicitQty(t *testing.T) {
	svc, mock := newTestService(t)
	qty := 25

	mock.ExpectQuery(`FROM store_items s`).WillReturnRows(itemRow(10, nil))
	mock.ExpectQuery(`price = \$6, qty = \$7, updated_at = NOW\(\)`).
		WithArgs(itemID, truckID, nil, "Shaved ice", "", 1000.0, 25).
		WillReturnRows(sqlmock.NewRows([]string{"qty", "updated_at"}).AddRow(25, time.Now()))

	d, err := svc.UpdateItem(context.Background(), owner, itemID, UpdateItemRequest{
		Qty: &qty,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, d.Qty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItem_DuplicateName(t *testing.T) {
	svc, mock := newTestService(t)
	name := "Cone"

	mock.ExpectQuery(`FROM store_items s`).WillReturnRows(itemRow(10, nil))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(truckID, "Cone", itemID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.UpdateItem(context.Background(), owner, itemID, UpdateItemRequest{
		Name: &name,
	})

	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "DUPLICATE", appErr.Code)
	assert.Equal(t, MsgItemExists, appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddStock(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM store_items s`).WillReturnRows(itemRow(8, nil))
	mock.ExpectQuery(`UPDATE store_items SET qty = qty \+ \$2 WHERE id = \$1 RETURNING qty`).
		WithArgs(itemID, 5).
		WillReturnRows(sqlmock.NewRows([]string{"qty"}).AddRow(13))

	d, err := svc.AddStock(context.Background(), owner, itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 13, d.Qty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddStock_Negative(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddStock(context.Background(), owner, itemID, -1)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestListItems_Filters(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM store_items s`).
		WithArgs(companyID, truckID, "Chocolate", "%ice%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`fl.name = \$3 AND s.name ILIKE \$4`).
		WithArgs(companyID, truckID, "Chocolate", "%ice%", 20, 0).
		WillReturnRows(itemRow(10, flavorID))

	details, total, err := svc.ListItems(context.Background(), owner, ItemListParams{
		TruckID:    truckID,
		FlavorName: "Chocolate",
		Search:     "ice",
	}, core.Page{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, details, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_AddStock(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM store_items s`).WillReturnRows(itemRow(8, nil))
	mock.ExpectQuery(`UPDATE store_items SET qty = qty \+ \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"qty"}).AddRow(10))

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPut, "/store/store/"+itemID+"/stock",
		strings.NewReader(`{"qty":2}`))
	req = req.WithContext(scope.WithCaller(req.Context(), owner))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Message string       `json:"message"`
		Data    ItemResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, MsgStockAdded, body.Message)
	assert.Equal(t, 10, body.Data.Qty)
}

func TestHandler_AddStock_MissingQty(t *testing.T) {
	svc, _ := newTestService(t)

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/store/store/"+itemID+"/stock",
		strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_CreateFlavor(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM ice_cream_trucks t`).WillReturnRows(truckRow(truckID))
	mock.ExpectQuery(`INSERT INTO flavors`).
		WithArgs(sqlmock.AnyArg(), truckID, "Chocolate").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/store/flavor",
		strings.NewReader(`{"name":"Chocolate","ice_cream_truck":"`+truckID+`"}`))
	req = req.WithContext(scope.WithCaller(req.Context(), owner))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Chocolate"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
