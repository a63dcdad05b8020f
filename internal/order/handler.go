// AngelaMos | 2026
// handler.go

package order

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
	r.Route("/order", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Place)
		r.Get("/{orderID}", h.Get)
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
		core.Paginated(w, []OrderResponse{}, page.Page, page.PageSize, 0)
		return
	}

	details, total, err := h.service.List(
		r.Context(),
		scope.FromContext(r.Context()),
		params,
		page,
	)
	if err != nil {
		core.HandleServiceError(w, err, "order")
		return
	}

	core.Paginated(w, ToOrderResponseList(details), page.Page, page.PageSize, total)
}

func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.PlaceOrder(r.Context(), scope.FromContext(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "order")
		return
	}

	core.CreatedWithMessage(w, MsgOrderPlaced, ToOrderResponse(d))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "orderID", "order")
	if !ok {
		return
	}

	d, err := h.service.Get(r.Context(), scope.FromContext(r.Context()), id)
	if err != nil {
		core.HandleServiceError(w, err, "order")
		return
	}

	core.OK(w, ToOrderResponse(d))
}
