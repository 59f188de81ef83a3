package logbooks

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

const dateLayout = "2006-01-02"

// Handler wires the logbook entry endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers entry routes. items, when non-nil, mounts the item
// routes under {parentID}/items.
func (h *Handler) MountRoutes(r chi.Router, items func(chi.Router)) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{parentID}", func(gr chi.Router) {
		gr.Get("/", h.get)
		gr.Delete("/", h.remove)
		if items != nil {
			gr.Route("/items", items)
		}
	})
}

type entryView struct {
	ID         int64  `json:"id"`
	EntryDate  string `json:"entryDate"`
	TotalSpent string `json:"totalSpent"`
	CreatedAt  string `json:"createdAt"`
}

func viewOf(entry Entry) entryView {
	return entryView{
		ID:         entry.ID,
		EntryDate:  entry.EntryDate.Format(dateLayout),
		TotalSpent: entry.TotalSpent.String(),
		CreatedAt:  entry.CreatedAt.Format(time.RFC3339),
	}
}

type createEntryRequest struct {
	EntryDate string `json:"entryDate" validate:"required"`
}

func (h *Handler) entryID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "parentID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "invalid logbook id")
		return 0, false
	}
	return id, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.RespondError(w, ErrInvalidDate)
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.RespondError(w, ErrInvalidDate)
			return
		}
		to = parsed
	}
	entries, err := h.service.List(r.Context(), actor.AccountID, from, to)
	if err != nil {
		h.logger.Error("list logbook entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, viewOf(entry))
	}
	httpx.Data(w, http.StatusOK, views)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "entryDate is required")
		return
	}
	day, err := time.Parse(dateLayout, req.EntryDate)
	if err != nil {
		httpx.RespondError(w, ErrInvalidDate)
		return
	}
	actor := shared.ActorFromContext(r.Context())
	entry, err := h.service.Create(r.Context(), actor.AccountID, day)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusCreated, viewOf(entry))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	actor := shared.ActorFromContext(r.Context())
	entry, err := h.service.Get(r.Context(), actor.AccountID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, viewOf(entry))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.entryID(w, r)
	if !ok {
		return
	}
	actor := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor.AccountID, id); err != nil {
		h.logger.Error("delete logbook entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "logbook entry deleted")
}
