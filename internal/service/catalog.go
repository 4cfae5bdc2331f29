package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/srakshitha0802/Book-review-application/internal/domain"
	"github.com/srakshitha0802/Book-review-application/internal/repository"
	apperrors "github.com/srakshitha0802/Book-review-application/pkg/errors"
	"github.com/srakshitha0802/Book-review-application/pkg/pagination"
)

// CatalogQuery holds the raw, unvalidated catalog query inputs as they
// arrive from the HTTP layer.
type CatalogQuery struct {
	Search  string
	Genre   string
	SortBy  string
	SortDir string
	Page    int
	PerPage int
}

// CatalogService implements read-side catalog queries over books.
type CatalogService struct {
	repo   repository.BookRepository
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.BookRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
	}
}

// ListBooks validates and normalizes the query, then returns the matching
// page of books and the total matching count. Identical criteria against an
// unchanged catalog always return identical pages: sort input is a validated
// (field, direction) pair and equal keys break ties on created_at then id.
func (s *CatalogService) ListBooks(ctx context.Context, query CatalogQuery) ([]domain.Book, int, error) {
	criteria, err := buildCriteria(query)
	if err != nil {
		return nil, 0, err
	}

	books, total, err := s.repo.List(ctx, criteria)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	return books, total, nil
}

// buildCriteria turns raw query inputs into validated repository criteria.
func buildCriteria(query CatalogQuery) (repository.CatalogCriteria, error) {
	criteria := repository.CatalogCriteria{
		SortBy:  domain.SortByCreatedAt,
		SortDir: domain.SortDesc,
		Page:    query.Page,
		PerPage: query.PerPage,
	}

	if search := strings.TrimSpace(query.Search); search != "" {
		criteria.Search = &search
	}

	if genre := strings.TrimSpace(query.Genre); genre != "" {
		if !domain.IsValidGenre(genre) {
			return repository.CatalogCriteria{}, apperrors.InvalidInput(fmt.Sprintf("unknown genre %q", genre))
		}
		criteria.Genre = &genre
	}

	if query.SortBy != "" {
		field := domain.SortField(query.SortBy)
		if !domain.IsValidSortField(field) {
			return repository.CatalogCriteria{}, apperrors.InvalidInput(fmt.Sprintf("unknown sort field %q", query.SortBy))
		}
		criteria.SortBy = field
	}

	if query.SortDir != "" {
		dir := domain.SortDirection(strings.ToLower(query.SortDir))
		if !domain.IsValidSortDirection(dir) {
			return repository.CatalogCriteria{}, apperrors.InvalidInput(fmt.Sprintf("sort direction must be %q or %q", domain.SortAsc, domain.SortDesc))
		}
		criteria.SortDir = dir
	}

	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PerPage <= 0 {
		criteria.PerPage = pagination.DefaultPerPage
	}
	if criteria.PerPage > pagination.MaxPerPage {
		criteria.PerPage = pagination.MaxPerPage
	}

	return criteria, nil
}
