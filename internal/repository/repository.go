package repository

import (
	"context"

	"github.com/srakshitha0802/Book-review-application/internal/domain"
)

// CatalogCriteria defines filter, sort, and pagination criteria for catalog
// queries. Filters combine conjunctively.
type CatalogCriteria struct {
	// Search matches case-insensitively as a substring of title OR author.
	Search *string

	// Genre restricts results to one genre. Validated by the service layer
	// against domain.ValidGenres before it reaches the repository.
	Genre *string

	SortBy  domain.SortField
	SortDir domain.SortDirection
	Page    int
	PerPage int
}

// BookRepository defines the interface for book persistence operations.
type BookRepository interface {
	// Create inserts a new book with zeroed review aggregates.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Book, error)

	// List returns books matching the criteria along with the total number
	// of matching rows (not just the page size).
	List(ctx context.Context, criteria CatalogCriteria) ([]domain.Book, int, error)

	// ListByOwner returns all books added by the given user, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Book, error)

	// Update modifies an existing book. Aggregate columns are not touched.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book and its reviews in one transaction.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines the interface for review persistence operations.
// Create, Update, and Delete each refresh the parent book's aggregates
// inside the same transaction as the review mutation.
type ReviewRepository interface {
	// Create inserts a review. A duplicate (book, user) pair returns
	// errors.ErrAlreadyExists derived from the storage unique violation.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// GetByBookAndUser retrieves the review a user wrote for a book, or
	// ErrNotFound when none exists.
	GetByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error)

	// ListForBook returns a book's reviews newest first with reviewer
	// names, plus the total review count for the book.
	ListForBook(ctx context.Context, bookID string, page, perPage int) ([]domain.Review, int, error)

	// ListByUser returns all reviews written by the given user, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)

	// Update modifies a review's rating and text.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review.
	Delete(ctx context.Context, id string) error
}

// ProfileRepository defines the interface for profile persistence operations.
type ProfileRepository interface {
	// GetByID retrieves a profile by user id.
	GetByID(ctx context.Context, id string) (*domain.Profile, error)

	// Upsert inserts the profile or updates its name if it already exists.
	Upsert(ctx context.Context, profile *domain.Profile) error
}
