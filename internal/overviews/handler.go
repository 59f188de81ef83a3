package overviews

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
	"github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// Handler wires the overview group endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers group routes. items, when non-nil, mounts the item
// routes under {parentID}/items.
func (h *Handler) MountRoutes(r chi.Router, items func(chi.Router)) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{parentID}", func(gr chi.Router) {
		gr.Get("/", h.get)
		gr.Patch("/", h.rename)
		gr.Delete("/", h.remove)
		gr.Get("/summary", h.summary)
		if items != nil {
			gr.Route("/items", items)
		}
	})
}

type groupView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	TotalSpent string `json:"totalSpent"`
	CreatedAt  string `json:"createdAt"`
}

func viewOf(group Group) groupView {
	return groupView{
		ID:         group.ID,
		Name:       group.Name,
		TotalSpent: group.TotalSpent.String(),
		CreatedAt:  group.CreatedAt.Format(time.RFC3339),
	}
}

type categoryView struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Total    string `json:"total"`
}

type summaryView struct {
	GroupID    int64          `json:"groupId"`
	Name       string         `json:"name"`
	TotalSpent string         `json:"totalSpent"`
	ItemCount  int            `json:"itemCount"`
	Categories []categoryView `json:"categories"`
}

type nameRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

func (h *Handler) groupID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "parentID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "invalid overview id")
		return 0, false
	}
	return id, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	groups, err := h.service.List(r.Context(), actor.AccountID)
	if err != nil {
		h.logger.Error("list overviews", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]groupView, 0, len(groups))
	for _, group := range groups {
		views = append(views, viewOf(group))
	}
	httpx.Data(w, http.StatusOK, views)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	actor := shared.ActorFromContext(r.Context())
	group, err := h.service.Create(r.Context(), actor.AccountID, req.Name)
	if err != nil {
		h.logger.Error("create overview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, viewOf(group))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}
	actor := shared.ActorFromContext(r.Context())
	group, err := h.service.Get(r.Context(), actor.AccountID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, viewOf(group))
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	actor := shared.ActorFromContext(r.Context())
	group, err := h.service.Rename(r.Context(), actor.AccountID, id, req.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, viewOf(group))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}
	actor := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor.AccountID, id); err != nil {
		h.logger.Error("delete overview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "overview deleted")
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.groupID(w, r)
	if !ok {
		return
	}
	actor := shared.ActorFromContext(r.Context())
	summary, err := h.service.Summary(r.Context(), actor.AccountID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	view := summaryView{
		GroupID:    summary.GroupID,
		Name:       summary.Name,
		TotalSpent: summary.TotalSpent.String(),
		ItemCount:  summary.ItemCount,
		Categories: make([]categoryView, 0, len(summary.Categories)),
	}
	for _, row := range summary.Categories {
		view.Categories = append(view.Categories, categoryView{
			Category: row.Category,
			Count:    row.Count,
			Total:    row.Total.String(),
		})
	}
	httpx.Data(w, http.StatusOK, view)
}
