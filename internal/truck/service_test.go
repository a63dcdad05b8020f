// AngelaMos | 2026
// service_test.go

package truck

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
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/customer"
	"github.com/carterperez-dev/icetruck/internal/kpi"
	"github.com/carterperez-dev/icetruck/internal/scope"
)

const (
	truckID     = "9d5c1f7e-1b61-4d8e-8d67-0c3a6f2b9e44"
	companyID   = "c-1"
	franchiseID = "f-1"
)

var detailColumns = []string{
	"id", "company_id", "franchise_id", "name", "country", "state",
	"location_name", "created_at", "updated_at", "company_name", "franchise_name",
}

type fixture struct {
	svc  *Service
	mock sqlmock.Sqlmock
	mr   *miniredis.Miniredis
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
	cache := kpi.NewCache(rdb, time.Minute, nil, logger)
	dbx := sqlx.NewDb(db, "sqlmock")

	customers := customer.NewService(customer.NewRepository(dbx), cache, logger)

	return &fixture{
		svc:  NewService(NewRepository(dbx), customers, cache, logger),
		mock: mock,
		mr:   mr,
	}
}

func detailRow(franchise any) *sqlmock.Rows {
	now := time.Now()
	var franchiseName any
	if franchise != nil {
		franchiseName = "North"
	}
	return sqlmock.NewRows(detailColumns).AddRow(
		truckID, companyID, franchise, "Unit-1", "SE", "Stockholm",
		"Central", now, now, "John Doe AB", franchiseName,
	)
}

func createRequest() CreateTruckRequest {
	return CreateTruckRequest{
		Name:         "Unit-1",
		Country:      "SE",
		State:        "Stockholm",
		LocationName: "Central",
	}
}

func TestCreate(t *testing.T) {
	t.Run("company owner", func(t *testing.T) {
		f := newFixture(t)

		f.mock.ExpectQuery(`INSERT INTO ice_cream_trucks`).
			WithArgs(sqlmock.AnyArg(), companyID, nil, "Unit-1", "SE", "Stockholm", "Central").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(time.Now(), time.Now()))
		f.mock.ExpectQuery(`FROM ice_cream_trucks t`).
			WillReturnRows(detailRow(nil))

		d, err := f.svc.Create(context.Background(), scope.Owner("u-1", companyID), createRequest())
		require.NoError(t, err)

		resp := ToTruckResponse(d)
		assert.Nil(t, resp.Franchise)
		assert.Equal(t, "John Doe AB", resp.Company.Name)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("franchise manager", func(t *testing.T) {
		f := newFixture(t)

		f.mock.ExpectQuery(`INSERT INTO ice_cream_trucks`).
			WithArgs(sqlmock.AnyArg(), companyID, franchiseID, "Unit-1", "SE", "Stockholm", "Central").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(time.Now(), time.Now()))
		f.mock.ExpectQuery(`FROM ice_cream_trucks t`).
			WithArgs(sqlmock.AnyArg(), franchiseID).
			WillReturnRows(detailRow(franchiseID))

		d, err := f.svc.Create(
			context.Background(),
			scope.Manager("u-2", franchiseID, companyID),
			createRequest(),
		)
		require.NoError(t, err)

		resp := ToTruckResponse(d)
		require.NotNil(t, resp.Franchise)
		assert.Equal(t, "North", resp.Franchise.Name)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("no tenant", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), scope.Caller{UserID: "u-3"}, createRequest())

		appErr, ok := core.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, appErr.StatusCode)
		assert.Equal(t, MsgNoTenant, appErr.Message)
	})
}

func TestList_SearchesTruckAndFranchiseName(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`SELECT COUNT\(\*\)\s+FROM ice_cream_trucks t`).
		WithArgs(companyID, "%uni%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	f.mock.ExpectQuery(`\(t.name ILIKE \$2 OR fr.name ILIKE \$2\)`).
		WithArgs(companyID, "%uni%", 20, 0).
		WillReturnRows(detailRow(nil))

	details, total, err := f.svc.List(
		context.Background(),
		scope.Owner("u-1", companyID),
		ListParams{Search: "uni"},
		core.Page{Page: 1, PageSize: 20},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, details, 1)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestKPI(t *testing.T) {
	t.Run("empty truck reports zeros", func(t *testing.T) {
		f := newFixture(t)

		f.mock.ExpectQuery(`FROM ice_cream_trucks t`).WillReturnRows(detailRow(nil))
		f.mock.ExpectQuery(`COALESCE\(\(SELECT SUM\(total_price\) FROM orders`).
			WithArgs(truckID).
			WillReturnRows(sqlmock.NewRows([]string{"total", "customers"}).AddRow(0.0, 0))

		v, err := f.svc.KPI(context.Background(), scope.Owner("u-1", companyID), truckID)
		require.NoError(t, err)
		assert.Equal(t, kpi.TruckKPI{}, v)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("second read is cached", func(t *testing.T) {
		f := newFixture(t)
		caller := scope.Owner("u-1", companyID)

		f.mock.ExpectQuery(`FROM ice_cream_trucks t`).WillReturnRows(detailRow(nil))
		f.mock.ExpectQuery(`COALESCE`).
			WillReturnRows(sqlmock.NewRows([]string{"total", "customers"}).AddRow(2000.0, 1))
		f.mock.ExpectQuery(`FROM ice_cream_trucks t`).WillReturnRows(detailRow(nil))

		first, err := f.svc.KPI(context.Background(), caller, truckID)
		require.NoError(t, err)
		second, err := f.svc.KPI(context.Background(), caller, truckID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 2000.0, second.TotalAmount)
		assert.Equal(t, 1, second.Customers)
		assert.True(t, f.mr.Exists(kpi.Key(truckID)))
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("foreign truck", func(t *testing.T) {
		f := newFixture(t)

		f.mock.ExpectQuery(`FROM ice_cream_trucks t`).
			WillReturnRows(sqlmock.NewRows(detailColumns))

		_, err := f.svc.KPI(context.Background(), scope.Owner("u-9", "c-9"), truckID)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestUpdate_PartialFields(t *testing.T) {
	f := newFixture(t)
	loc := " Harbour "

	f.mock.ExpectQuery(`FROM ice_cream_trucks t`).WillReturnRows(detailRow(nil))
	f.mock.ExpectQuery(`UPDATE ice_cream_trucks`).
		WithArgs(truckID, "Unit-1", "SE", "Stockholm", "Harbour").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	d, err := f.svc.Update(context.Background(), scope.Owner("u-1", companyID), truckID,
		UpdateTruckRequest{LocationName: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Harbour", d.LocationName)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDelete_DropsKPI(t *testing.T) {
	f := newFixture(t)
	f.mr.Set(kpi.Key(truckID), `{"total_amount":1,"customers":1}`)

	f.mock.ExpectQuery(`FROM ice_cream_trucks t`).WillReturnRows(detailRow(nil))
	f.mock.ExpectExec(`DELETE FROM ice_cream_trucks WHERE id = \$1`).
		WithArgs(truckID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, f.svc.Delete(context.Background(), scope.Owner("u-1", companyID), truckID))
	assert.False(t, f.mr.Exists(kpi.Key(truckID)))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func serve(f *fixture, caller scope.Caller, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(scope.WithCaller(req.Context(), caller))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_AddCustomer(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`FROM ice_cream_trucks t`).WillReturnRows(detailRow(nil))
	f.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(truckID, "Jane").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	f.mock.ExpectQuery(`INSERT INTO customers`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	rec := serve(f, scope.Owner("u-1", companyID), http.MethodPost,
		"/ice-cream-truck/"+truckID+"/add_customer",
		`{"name":"Jane","email":"jane@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Data customer.CustomerResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Jane", body.Data.Name)
	require.NotNil(t, body.Data.Truck)
	assert.Equal(t, truckID, body.Data.Truck.ID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestHandler_AddCustomer_Duplicate(t *testing.T) {
	f := newFixture(t)

	f.mock.ExpectQuery(`FROM ice_cream_trucks t`).WillReturnRows(detailRow(nil))
	f.mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	rec := serve(f, scope.Owner("u-1", companyID), http.MethodPost,
		"/ice-cream-truck/"+truckID+"/add_customer",
		`{"name":"Jane","email":"jane@example.com"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), customer.MsgCustomerExists)
	assert.Contains(t, rec.Body.String(), `"code":"DUPLICATE"`)
}

func TestHandler_CreateValidation(t *testing.T) {
	f := newFixture(t)

	rec := serve(f, scope.Owner("u-1", companyID), http.MethodPost,
		"/ice-cream-truck", `{"name":"Unit-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
