// AngelaMos | 2026
// handler.go

package franchise

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/icetruck/internal/core"
	"github.com/carterperez-dev/icetruck/internal/middleware"
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
	r.Route("/franchise", func(r chi.Router) {
		r.With(middleware.RequireCompanyOwner).Get("/", h.List)
		r.With(middleware.RequireCompanyOwner).Post("/", h.Create)
		r.Get("/{franchiseID}", h.Get)
		r.Put("/{franchiseID}", h.Update)
		r.With(middleware.RequireCompanyOwner).Delete("/{franchiseID}", h.Delete)
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
		core.HandleServiceError(w, err, "franchise")
		return
	}

	core.Paginated(w, ToFranchiseResponseList(details), page.Page, page.PageSize, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFranchiseRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.Create(r.Context(), scope.FromContext(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "franchise")
		return
	}

	core.Created(w, ToFranchiseResponse(d))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "franchiseID", "franchise")
	if !ok {
		return
	}

	d, err := h.service.Get(r.Context(), scope.FromContext(r.Context()), id)
	if err != nil {
		core.HandleServiceError(w, err, "franchise")
		return
	}

	core.OK(w, ToFranchiseResponse(d))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "franchiseID", "franchise")
	if !ok {
		return
	}

	var req UpdateFranchiseRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.Update(r.Context(), scope.FromContext(r.Context()), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "franchise")
		return
	}

	core.OK(w, ToFranchiseResponse(d))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "franchiseID", "franchise")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), scope.FromContext(r.Context()), id); err != nil {
		core.HandleServiceError(w, err, "franchise")
		return
	}

	core.OKWithMessage(w, MsgFranchiseDeleted, nil)
}
