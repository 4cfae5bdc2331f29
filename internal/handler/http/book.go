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

// BookHandler handles HTTP requests for book and catalog endpoints.
type BookHandler struct {
	books   *service.BookService
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewBookHandler creates a new book HTTP handler.
func NewBookHandler(books *service.BookService, catalog *service.CatalogService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		books:   books,
		catalog: catalog,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateBookRequest is the JSON request body for adding a book.
type CreateBookRequest struct {
	Title       string  `json:"title" validate:"required,max=500"`
	Author      string  `json:"author" validate:"required,max=500"`
	Description string  `json:"description" validate:"max=5000"`
	Genre       *string `json:"genre"`
	Year        *int    `json:"year"`
}

// UpdateBookRequest is the JSON request body for updating a book.
// All fields are optional; nil fields are left unchanged.
type UpdateBookRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=500"`
	Author      *string `json:"author" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Genre       *string `json:"genre"`
	Year        *int    `json:"year"`
}

// --- Handlers ---

// ListBooks handles GET /api/v1/books. It runs the catalog query with
// optional search, genre filter, sort key, and pagination, and returns a
// paginated envelope.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	query := service.CatalogQuery{
		Search:  r.URL.Query().Get("search"),
		Genre:   r.URL.Query().Get("genre"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("order"),
	}

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		query.Page = page
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid positive integer"},
			})
			return
		}
		query.PerPage = perPage
	}

	books, total, err := h.catalog.ListBooks(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	params := pagination.Params{Page: query.Page, PerPage: query.PerPage}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = pagination.DefaultPerPage
	}
	if params.PerPage > pagination.MaxPerPage {
		params.PerPage = pagination.MaxPerPage
	}

	httputil.WriteJSON(w, http.StatusOK, pagination.NewResult(books, total, params))
}

// GetBook handles GET /api/v1/books/{id}.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	book, err := h.books.GetBook(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// CreateBook handles POST /api/v1/books.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateBookRequest
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

	input := &service.CreateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Genre:       req.Genre,
		Year:        req.Year,
	}

	book, err := h.books.CreateBook(r.Context(), middleware.UserIDFromContext(r.Context()), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: book})
}

// UpdateBook handles PUT /api/v1/books/{id}. Only the owner may update.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateBookRequest
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

	input := &service.UpdateBookInput{
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		Genre:       req.Genre,
		Year:        req.Year,
	}

	book, err := h.books.UpdateBook(r.Context(), id.String(), middleware.UserIDFromContext(r.Context()), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// DeleteBook handles DELETE /api/v1/books/{id}. Only the owner may delete.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.books.DeleteBook(r.Context(), id.String(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}
