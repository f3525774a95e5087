package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/accountd/accountd/internal/handler/dto"
	"github.com/accountd/accountd/internal/model"
	"github.com/accountd/accountd/internal/service"
)

// AccountService defines the account operations used by AccountHandler.
type AccountService interface {
	Create(ctx context.Context, req model.AccountCreationRequest) (*model.Account, error)
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	GetByID(ctx context.Context, id int64) (*model.Account, error)
}

// AccountHandler handles HTTP requests for account operations.
type AccountHandler struct {
	svc    AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// Routes registers the account endpoints on r.
func (h *AccountHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/username/{username}", h.GetByUsername)
	r.Get("/{id}", h.GetByID)
}

// Create handles POST /account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		h.writeError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
		return
	}

	// A pointer target leaves req nil for a literal null body.
	var req *dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req == nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is missing")
		return
	}

	account, err := h.svc.Create(r.Context(), req.ToModel())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("account_created",
		"account_id", account.ID,
		"username", account.Username,
	)

	writeJSON(w, http.StatusCreated, dto.ToAccountResponse(account))
}

// GetByUsername handles GET /account/username/{username}.
func (h *AccountHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if r.URL.RawPath != "" {
		// chi matched against the escaped path
		unescaped, err := url.PathUnescape(username)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "INVALID_USERNAME", "Username is not a valid path segment")
			return
		}
		username = unescaped
	}

	account, err := h.svc.GetByUsername(r.Context(), username)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAccountResponse(account))
}

// GetByID handles GET /account/{id}.
func (h *AccountHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_ID", "Account ID must be an integer")
		return
	}

	account, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAccountResponse(account))
}

// handleServiceError maps service errors to HTTP responses.
// Not-found is answered with an empty body.
func (h *AccountHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, service.ErrUsernameTaken):
		h.writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already exists")
	default:
		h.logger.ErrorContext(r.Context(), "internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// isJSONContentType reports whether contentType is application/json, with any parameters.
func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

// writeError writes an error response.
func (h *AccountHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
