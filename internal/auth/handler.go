package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
)

const (
	rateLimit  = 10
	rateWindow = time.Minute
)

// Handler wires HTTP endpoints for the account lifecycle.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers auth routes. The whole group is rate limited per IP;
// there is no per-account attempt counter (see DESIGN notes).
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(rateLimit, rateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Error(w, http.StatusTooManyRequests, "too many attempts, slow down")
		}),
	)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Post("/register", h.handleRegister)
		gr.Post("/register/confirm", h.handleRegisterConfirm)
		gr.Post("/login", h.handleLogin)
		gr.Post("/login/confirm", h.handleLoginConfirm)
		gr.Post("/code/resend", h.handleResendCode)
	})
}

type authResponse struct {
	User        *PublicAccount `json:"user,omitempty"`
	AccessToken string         `json:"accessToken,omitempty"`
	Message     string         `json:"message,omitempty"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
}

type confirmRequest struct {
	AccountID int64  `json:"accountId" validate:"required,min=1"`
	Code      string `json:"code" validate:"required,len=8,numeric"`
	Remember  bool   `json:"remember,omitempty"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type resendRequest struct {
	AccountID int64 `json:"accountId" validate:"required,min=1"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.service.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.logger.Error("register", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	public := account.Public()
	httpx.JSON(w, http.StatusCreated, authResponse{User: &public, Message: "confirmation code sent"})
}

func (h *Handler) handleRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.service.FinalizeRegistration(r.Context(), req.AccountID, req.Code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	public := account.Public()
	httpx.JSON(w, http.StatusOK, authResponse{User: &public, Message: "registration confirmed"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	public := account.Public()
	httpx.JSON(w, http.StatusOK, authResponse{User: &public, Message: "confirmation code sent"})
}

func (h *Handler) handleLoginConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, credential, err := h.service.FinalizeLogin(r.Context(), req.AccountID, req.Code, req.Remember)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	public := account.Public()
	httpx.JSON(w, http.StatusOK, authResponse{User: &public, AccessToken: credential, Message: "login confirmed"})
}

func (h *Handler) handleResendCode(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.RegenerateCode(r.Context(), req.AccountID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, authResponse{Message: "new confirmation code sent"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Error(w, http.StatusBadRequest, "missing or malformed fields")
		return false
	}
	return true
}
