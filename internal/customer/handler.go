// AngelaMos | 2026
// handler.go

package customer

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/icetruck/internal/core"
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
	r.Route("/customer", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{customerID}", h.Get)
		r.Put("/{customerID}", h.Update)
		r.Delete("/{customerID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)
	q := r.URL.Query()

	params := ListParams{
		TruckID: q.Get("ice_cream_truck"),
		Search:  q.Get("search"),
	}
	if params.TruckID != "" && !core.ValidID(params.TruckID) {
		core.Paginated(w, []CustomerResponse{}, page.Page, page.PageSize, 0)
		return
	}

	details, total, err := h.service.List(
		r.Context(),
		scope.FromContext(r.Context()),
		params,
		page,
	)
	if err != nil {
		core.HandleServiceError(w, err, "customer")
		return
	}

	core.Paginated(w, ToCustomerResponseList(details), page.Page, page.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "customerID", "customer")
	if !ok {
		return
	}

	d, err := h.service.Get(r.Context(), scope.FromContext(r.Context()), id)
	if err != nil {
		core.HandleServiceError(w, err, "customer")
		return
	}

	core.OK(w, ToCustomerResponse(d))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "customerID", "customer")
	if !ok {
		return
	}

	var req UpdateCustomerRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.Update(r.Context(), scope.FromContext(r.Context()), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "customer")
		return
	}

	core.OK(w, ToCustomerResponse(d))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "customerID", "customer")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), scope.FromContext(r.Context()), id); err != nil {
		core.HandleServiceError(w, err, "customer")
		return
	}

	core.NoContent(w)
}
