// AngelaMos | 2026
// handler.go

package store

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
	r.Route("/store", func(r chi.Router) {
		r.Route("/flavor", func(r chi.Router) {
			r.Get("/", h.ListFlavors)
			r.Post("/", h.CreateFlavor)
			r.Get("/{flavorID}", h.GetFlavor)
			r.Put("/{flavorID}", h.UpdateFlavor)
			r.Delete("/{flavorID}", h.DeleteFlavor)
		})

		r.Route("/store", func(r chi.Router) {
			r.Get("/", h.ListItems)
			r.Post("/", h.CreateItem)
			r.Get("/{itemID}", h.GetItem)
			r.Put("/{itemID}", h.UpdateItem)
			r.Delete("/{itemID}", h.DeleteItem)
			r.Put("/{itemID}/stock", h.AddStock)
		})
	})
}

// truckFilter reads the ice_cream_truck query filter. A malformed id
// cannot match and is reported as such.
func truckFilter(r *http.Request) (string, bool) {
	id := r.URL.Query().Get("ice_cream_truck")
	if id == "" {
		return "", true
	}
	return id, core.ValidID(id)
}

func (h *Handler) ListFlavors(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	truckID, ok := truckFilter(r)
	if !ok {
		core.Paginated(w, []FlavorResponse{}, page.Page, page.PageSize, 0)
		return
	}

	details, total, err := h.service.ListFlavors(
		r.Context(),
		scope.FromContext(r.Context()),
		FlavorListParams{TruckID: truckID, Search: r.URL.Query().Get("search")},
		page,
	)
	if err != nil {
		core.HandleServiceError(w, err, "flavor")
		return
	}

	core.Paginated(w, ToFlavorResponseList(details), page.Page, page.PageSize, total)
}

func (h *Handler) CreateFlavor(w http.ResponseWriter, r *http.Request) {
	var req CreateFlavorRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.CreateFlavor(r.Context(), scope.FromContext(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "truck")
		return
	}

	core.Created(w, ToFlavorResponse(d))
}

func (h *Handler) GetFlavor(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "flavorID", "flavor")
	if !ok {
		return
	}

	d, err := h.service.GetFlavor(r.Context(), scope.FromContext(r.Context()), id)
	if err != nil {
		core.HandleServiceError(w, err, "flavor")
		return
	}

	core.OK(w, ToFlavorResponse(d))
}

func (h *Handler) UpdateFlavor(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "flavorID", "flavor")
	if !ok {
		return
	}

	var req UpdateFlavorRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.UpdateFlavor(r.Context(), scope.FromContext(r.Context()), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "flavor")
		return
	}

	core.OK(w, ToFlavorResponse(d))
}

func (h *Handler) DeleteFlavor(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "flavorID", "flavor")
	if !ok {
		return
	}

	if err := h.service.DeleteFlavor(r.Context(), scope.FromContext(r.Context()), id); err != nil {
		core.HandleServiceError(w, err, "flavor")
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	truckID, ok := truckFilter(r)
	if !ok {
		core.Paginated(w, []ItemResponse{}, page.Page, page.PageSize, 0)
		return
	}

	q := r.URL.Query()
	details, total, err := h.service.ListItems(
		r.Context(),
		scope.FromContext(r.Context()),
		ItemListParams{
			TruckID:    truckID,
			FlavorName: q.Get("flavor__name"),
			Search:     q.Get("search"),
		},
		page,
	)
	if err != nil {
		core.HandleServiceError(w, err, "store item")
		return
	}

	core.Paginated(w, ToItemResponseList(details), page.Page, page.PageSize, total)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.CreateItem(r.Context(), scope.FromContext(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, err, "truck")
		return
	}

	core.Created(w, ToItemResponse(d))
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "itemID", "store item")
	if !ok {
		return
	}

	d, err := h.service.GetItem(r.Context(), scope.FromContext(r.Context()), id)
	if err != nil {
		core.HandleServiceError(w, err, "store item")
		return
	}

	core.OK(w, ToItemResponse(d))
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "itemID", "store item")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.UpdateItem(r.Context(), scope.FromContext(r.Context()), id, req)
	if err != nil {
		core.HandleServiceError(w, err, "store item")
		return
	}

	core.OK(w, ToItemResponse(d))
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "itemID", "store item")
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), scope.FromContext(r.Context()), id); err != nil {
		core.HandleServiceError(w, err, "store item")
		return
	}

	core.NoContent(w)
}

func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	id, ok := core.PathID(w, r, "itemID", "store item")
	if !ok {
		return
	}

	var req AddStockRequest
	if !core.DecodeAndValidate(w, r, h.validator, &req) {
		return
	}

	d, err := h.service.AddStock(r.Context(), scope.FromContext(r.Context()), id, *req.Qty)
	if err != nil {
		core.HandleServiceError(w, err, "store item")
		return
	}

	core.OKWithMessage(w, MsgStockAdded, ToItemResponse(d))
}
