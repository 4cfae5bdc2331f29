package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/srakshitha0802/Book-review-application/internal/auth"
	"github.com/srakshitha0802/Book-review-application/internal/service"
	"github.com/srakshitha0802/Book-review-application/pkg/httputil"
	"github.com/srakshitha0802/Book-review-application/pkg/validator"
)

// AuthHandler mints development access tokens. The identity provider sits in
// front of this service in production, so the endpoint is disabled there and
// answers 404.
type AuthHandler struct {
	jwt           *auth.JWTManager
	profiles      *service.ProfileService
	enabled       bool
	expirySeconds int64
	logger        *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(jwt *auth.JWTManager, profiles *service.ProfileService, enabled bool, expirySeconds int64, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		jwt:           jwt,
		profiles:      profiles,
		enabled:       enabled,
		expirySeconds: expirySeconds,
		logger:        logger,
	}
}

// IssueTokenRequest is the JSON request body for minting a dev token.
type IssueTokenRequest struct {
	UserID string `json:"user_id" validate:"omitempty,uuid"`
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required,min=1,max=200"`
}

// IssueTokenResponse is the JSON response for a minted dev token.
type IssueTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
}

// IssueToken handles POST /api/v1/auth/token. When user_id is omitted a
// fresh one is generated. The caller's display name is upserted into the
// profile store so reviews can show it.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "NOT_FOUND", Message: "resource not found"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req IssueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = uuid.New().String()
	}

	if _, err := h.profiles.UpsertProfile(r.Context(), userID, req.Name); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	token, err := h.jwt.GenerateAccessToken(userID, req.Email, req.Name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: IssueTokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   h.expirySeconds,
		UserID:      userID,
	}})
}
