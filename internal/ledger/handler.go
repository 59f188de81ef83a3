package ledger

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerkeep/ledgerkeep/internal/money"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
	"github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// Handler wires the item endpoints. The same handler serves both parent
// kinds; the router mounts it once per kind.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs an item handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountParentRoutes registers the routes scoped to one parent collection.
// The enclosing router provides the {parentID} URL parameter.
func (h *Handler) MountParentRoutes(r chi.Router, kind ParentKind) {
	r.Get("/", h.forKind(kind, h.listItems))
	r.Post("/", h.forKind(kind, h.addItem))
	r.Delete("/", h.forKind(kind, h.deleteAll))
	r.Post("/bulk-delete", h.forKind(kind, h.bulkDelete))
	r.Put("/order", h.forKind(kind, h.reorder))
}

// MountItemRoutes registers the routes addressing one item directly.
func (h *Handler) MountItemRoutes(r chi.Router) {
	r.Patch("/{itemID}", h.updateItem)
	r.Put("/{itemID}/placement", h.updatePlacement)
	r.Delete("/{itemID}", h.deleteItem)
}

type itemView struct {
	ID          int64  `json:"id"`
	ParentKind  string `json:"parentKind"`
	ParentID    int64  `json:"parentId"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Cost        string `json:"cost,omitempty"`
	Placement   int    `json:"placement"`
}

func viewOf(item Item) itemView {
	view := itemView{
		ID:          item.ID,
		ParentKind:  string(item.Parent.Kind),
		ParentID:    item.Parent.ID,
		Category:    string(item.Category),
		Description: item.Description,
		Placement:   item.Placement,
	}
	if item.Cost != nil {
		view.Cost = item.Cost.String()
	}
	return view
}

type addItemRequest struct {
	Category    string `json:"category" validate:"required"`
	Description string `json:"description" validate:"required,max=500"`
	Cost        string `json:"cost,omitempty"`
}

type updateItemRequest struct {
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Cost        *string `json:"cost,omitempty"`
	ClearCost   bool    `json:"clearCost,omitempty"`
}

type placementRequest struct {
	Placement int `json:"placement" validate:"required,min=1"`
}

type idsRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,min=1"`
}

type parentHandler func(w http.ResponseWriter, r *http.Request, parent ParentRef)

// forKind resolves the {parentID} parameter and enforces that the requesting
// account owns the parent. Foreign parents read as not-found so existence is
// not disclosed.
func (h *Handler) forKind(kind ParentKind, next parentHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parentID, err := strconv.ParseInt(chi.URLParam(r, "parentID"), 10, 64)
		if err != nil || parentID <= 0 {
			httpx.Error(w, http.StatusBadRequest, "invalid collection id")
			return
		}
		parent := ParentRef{Kind: kind, ID: parentID}
		if !h.authorizeParent(w, r, parent) {
			return
		}
		next(w, r, parent)
	}
}

func (h *Handler) authorizeParent(w http.ResponseWriter, r *http.Request, parent ParentRef) bool {
	ownerID, err := h.service.ParentOwner(r.Context(), parent)
	if err != nil {
		httpx.RespondError(w, err)
		return false
	}
	if actor := shared.ActorFromContext(r.Context()); actor.AccountID != ownerID {
		httpx.RespondError(w, ErrParentNotFound)
		return false
	}
	return true
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request, parent ParentRef) {
	items, err := h.service.ListItems(r.Context(), parent)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, viewOf(item))
	}
	httpx.Data(w, http.StatusOK, views)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request, parent ParentRef) {
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "category and description are required")
		return
	}
	input := NewItemInput{Category: Category(req.Category), Description: req.Description}
	if req.Cost != "" {
		cost, err := money.ParseAmount(req.Cost)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "cost must be a non-negative amount")
			return
		}
		input.Cost = &cost
	}
	item, err := h.service.AddItem(r.Context(), parent, input)
	if err != nil {
		h.logger.Error("add item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, viewOf(item))
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request, parent ParentRef) {
	if err := h.service.DeleteAllForParent(r.Context(), parent); err != nil {
		h.logger.Error("delete all items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "all items deleted")
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request, parent ParentRef) {
	var req idsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "ids are required")
		return
	}
	if err := h.service.BulkDelete(r.Context(), parent, req.IDs); err != nil {
		h.logger.Error("bulk delete items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "items deleted")
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request, parent ParentRef) {
	var req idsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "ids are required")
		return
	}
	if err := h.service.ReorderItems(r.Context(), parent, req.IDs); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "order updated")
}

// itemFor loads the item addressed by {itemID} and authorizes its parent.
func (h *Handler) itemFor(w http.ResponseWriter, r *http.Request) (Item, bool) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || itemID <= 0 {
		httpx.Error(w, http.StatusBadRequest, "invalid item id")
		return Item{}, false
	}
	item, err := h.service.GetItem(r.Context(), itemID)
	if err != nil {
		httpx.RespondError(w, err)
		return Item{}, false
	}
	if !h.authorizeParent(w, r, item.Parent) {
		return Item{}, false
	}
	return item, true
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.itemFor(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid item fields")
		return
	}
	input := UpdateItemInput{Description: req.Description, ClearCost: req.ClearCost}
	if req.Category != nil {
		category := Category(*req.Category)
		input.Category = &category
	}
	if req.Cost != nil && !req.ClearCost {
		cost, err := money.ParseAmount(*req.Cost)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "cost must be a non-negative amount")
			return
		}
		input.Cost = &cost
	}
	updated, err := h.service.UpdateItem(r.Context(), item.ID, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, viewOf(updated))
}

func (h *Handler) updatePlacement(w http.ResponseWriter, r *http.Request) {
	item, ok := h.itemFor(w, r)
	if !ok {
		return
	}
	var req placementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "placement must be a positive integer")
		return
	}
	if err := h.service.UpdatePlacement(r.Context(), item.ID, req.Placement); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "placement updated")
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.itemFor(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteItem(r.Context(), item.ID); err != nil {
		h.logger.Error("delete item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "item deleted")
}
