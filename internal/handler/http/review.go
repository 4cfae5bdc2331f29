package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/srakshitha0802/Book-review-application/internal/service"
	"github.com/srakshitha0802/Book-review-application/pkg/httputil"
	"github.com/srakshitha0802/Book-review-application/pkg/middleware"
	"github.com/srakshitha0802/Book-review-application/pkg/pagination"
	"github.com/srakshitha0802/Book-review-application/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// SubmitReviewRequest is the JSON request body for submitting a review.
type SubmitReviewRequest struct {
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	ReviewText string `json:"review_text" validate:"max=5000"`
}

// AmendReviewRequest is the JSON request body for amending a review.
type AmendReviewRequest struct {
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	ReviewText string `json:"review_text" validate:"max=5000"`
}

// ListReviews handles GET /api/v1/books/{id}/reviews. Reviews are returned
// newest first with the reviewer's display name joined in.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	bookID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	params := pagination.DefaultParams()
	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		params.Page = page
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > pagination.MaxPerPage {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 50"},
			})
			return
		}
		params.PerPage = perPage
	}

	reviews, total, err := h.reviews.ListReviewsForBook(r.Context(), bookID.String(), params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(reviews, total, params))
}

// GetMyReview handles GET /api/v1/books/{id}/reviews/me. Clients call it to
// decide between the submit and amend paths before rendering the review
// form; 404 means the user has not reviewed this book yet.
func (h *ReviewHandler) GetMyReview(w http.ResponseWriter, r *http.Request) {
	bookID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.reviews.FindReviewByAuthor(r.Context(), bookID.String(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// SubmitReview handles POST /api/v1/books/{id}/reviews. A user may review a
// given book at most once; a duplicate submit yields 409.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	bookID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SubmitReviewRequest
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

	review, err := h.reviews.SubmitReview(r.Context(), bookID.String(), middleware.UserIDFromContext(r.Context()), req.Rating, req.ReviewText)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// AmendReview handles PUT /api/v1/reviews/{id}. Only the author may amend.
func (h *ReviewHandler) AmendReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AmendReviewRequest
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

	review, err := h.reviews.AmendReview(r.Context(), id.String(), middleware.UserIDFromContext(r.Context()), req.Rating, req.ReviewText)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// WithdrawReview handles DELETE /api/v1/reviews/{id}. Only the author may
// withdraw.
func (h *ReviewHandler) WithdrawReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.reviews.WithdrawReview(r.Context(), id.String(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}
