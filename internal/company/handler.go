// AngelaMos | 2026
// handler.go

package company

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

// RegisterPublicRoutes mounts the unauthenticated sign-up endpoint.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/register", h.Register)
}

// RegisterRoutes expects the router to already carry authentication and
// caller resolution.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/company", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{companyID}", h.Get)
		r.Put("/{companyID}", h.Update)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		core.HandleServiceError(w, err, "account")
		return
	}

	core.CreatedWithMessage(w, MsgAccountCreated, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	companies, total, err := h.service.List(
		r.Context(),
		scope.FromContext(r.Context()),
		ListParams{Search: r.URL.Query().Get("search")},
		page,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToCompanyResponseList(companies), page.Page, page.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "companyID", "company")
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), scope.FromContext(r.Context()), id)
	if err != nil {
		core.HandleServiceError(w, err, "company")
		return
	}

	core.OK(w, ToCompanyResponse(c))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "companyID", "company")
	if !ok {
		return
	}

	var req UpdateCompanyRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	c, err := h.service.Update(r.Context(), scope.FromContext(r.Context()), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "company")
		return
	}

	core.OK(w, ToCompanyResponse(c))
}
