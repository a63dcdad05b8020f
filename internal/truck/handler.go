// AngelaMos | 2026
// handler.go

package truck

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/customer"
	"github.com/carterperez-dev/icetruck/internal/scope"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/ice-cream-truck", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{truckID}", h.Get)
		r.Put("/{truckID}", h.Update)
		r.Delete("/{truckID}", h.Delete)
		r.Get("/{truckID}/kpi", h.KPI)
		r.Post("/{truckID}/add_customer", h.AddCustomer)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	details, total, err := h.service.List(
		r.Context(),
		scope.FromContext(r.Context()),
		ListParams{Search: r.URL.Query().Get("search")},
		page,
	)
	if err != nil {
		core.HandleServiceError(w, err, "truck")
		return
	}

	core.Paginated(w, ToTruckResponseList(details), page.Page, page.PageSize, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTruckRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.Create(r.Context(), scope.FromContext(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "truck")
		return
	}

	core.Created(w, ToTruckResponse(d))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "truckID", "truck")
	if !ok {
		return
	}

	d, err := h.service.Get(r.Context(), scope.FromContext(r.Context()), id)
	if err != nil {
		core.HandleServiceError(w, err, "truck")
		return
	}

	core.OK(w, ToTruckResponse(d))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "truckID", "truck")
	if !ok {
		return
	}

	var req UpdateTruckRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.Update(r.Context(), scope.FromContext(r.Context()), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "truck")
		return
	}

	core.OK(w, ToTruckResponse(d))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "truckID", "truck")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), scope.FromContext(r.Context()), id); err != nil {
		core.HandleServiceError(w, err, "truck")
		return
	}

	core.NoContent(w)
}

func (h *Handler) KPI(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "truckID", "truck")
	if !ok {
		return
	}

	v, err := h.service.KPI(r.Context(), scope.FromContext(r.Context()), id)
	if err != nil {
		core.HandleServiceError(w, err, "truck")
		return
	}

	core.OK(w, v)
}

func (h *Handler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "truckID", "truck")
	if !ok {
		return
	}

	var req customer.CreateCustomerRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.AddCustomer(r.Context(), scope.FromContext(r.Context()), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "truck")
		return
	}

	core.Created(w, customer.ToCustomerResponse(d))
}
