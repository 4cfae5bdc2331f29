package http

import (
	"log/slog"
	"net/http"

	"github.com/srakshitha0802/Book-review-application/internal/service"
	"github.com/srakshitha0802/Book-review-application/pkg/httputil"
	"github.com/srakshitha0802/Book-review-application/pkg/middleware"
)

// ProfileHandler handles HTTP requests for the authenticated user's profile.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

// NewProfileHandler creates a new profile HTTP handler.
func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger,
	}
}

// GetMe handles GET /api/v1/users/me. It returns the caller's profile along
// with the books they added and the reviews they wrote.
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	overview, err := h.profiles.GetOverview(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: overview})
}
