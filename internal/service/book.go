package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/srakshitha0802/Book-review-application/internal/domain"
	"github.com/srakshitha0802/Book-review-application/internal/repository"
	apperrors "github.com/srakshitha0802/Book-review-application/pkg/errors"
)

// BookEventPublisher publishes book domain events. Satisfied by
// event.Producer; abstracted so tests can substitute a mock.
type BookEventPublisher interface {
	PublishBookCreated(ctx context.Context, book *domain.Book) error
	PublishBookUpdated(ctx context.Context, book *domain.Book) error
	PublishBookDeleted(ctx context.Context, id string) error
}

// BookService implements the business logic for book operations.
type BookService struct {
	repo     repository.BookRepository
	producer BookEventPublisher
	logger   *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(repo repository.BookRepository, producer BookEventPublisher, logger *slog.Logger) *BookService {
	return &BookService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateBookInput holds the parameters for creating a book.
type CreateBookInput struct {
	Title       string
	Author      string
	Description string
	Genre       *string
	Year        *int
}

// UpdateBookInput holds the parameters for a partial book update. Nil fields
// are left unchanged.
type UpdateBookInput struct {
	Title       *string
	Author      *string
	Description *string
	Genre       *string
	Year        *int
}

// CreateBook creates a new book owned by ownerID. Aggregates start at zero
// and are maintained exclusively by the review path.
func (s *BookService) CreateBook(ctx context.Context, ownerID string, input *CreateBookInput) (*domain.Book, error) {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)

	if title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if author == "" {
		return nil, apperrors.InvalidInput("author is required")
	}
	if err := validateGenre(input.Genre); err != nil {
		return nil, err
	}
	if err := validateYear(input.Year); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:          uuid.New().String(),
		Title:       title,
		Author:      author,
		Description: strings.TrimSpace(input.Description),
		Genre:       input.Genre,
		Year:        input.Year,
		AddedBy:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.producer.PublishBookCreated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
	)

	return book, nil
}

// GetBook retrieves a book by its ID.
func (s *BookService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book by id: %w", err)
	}
	return book, nil
}

// ListBooksByOwner returns the books added by the given user, newest first.
func (s *BookService) ListBooksByOwner(ctx context.Context, ownerID string) ([]domain.Book, error) {
	books, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books by owner: %w", err)
	}
	return books, nil
}

// UpdateBook applies a partial update to a book. Only the book's owner may
// update it; anyone else gets Forbidden, a terminal rejection.
func (s *BookService) UpdateBook(ctx context.Context, id, requesterID string, input *UpdateBookInput) (*domain.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book by id: %w", err)
	}

	if !domain.CanMutate(requesterID, book.AddedBy) {
		return nil, apperrors.Forbidden("only the owner can update this book")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.InvalidInput("title must not be empty")
		}
		book.Title = title
	}
	if input.Author != nil {
		author := strings.TrimSpace(*input.Author)
		if author == "" {
			return nil, apperrors.InvalidInput("author must not be empty")
		}
		book.Author = author
	}
	if input.Description != nil {
		book.Description = strings.TrimSpace(*input.Description)
	}
	if input.Genre != nil {
		if err := validateGenre(input.Genre); err != nil {
			return nil, err
		}
		book.Genre = input.Genre
	}
	if input.Year != nil {
		if err := validateYear(input.Year); err != nil {
			return nil, err
		}
		book.Year = input.Year
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}

	if err := s.producer.PublishBookUpdated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.updated event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book updated", slog.String("book_id", book.ID))

	return book, nil
}

// DeleteBook removes a book and its reviews. Only the owner may delete it.
func (s *BookService) DeleteBook(ctx context.Context, id, requesterID string) error {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get book by id: %w", err)
	}

	if !domain.CanMutate(requesterID, book.AddedBy) {
		return apperrors.Forbidden("only the owner can delete this book")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if err := s.producer.PublishBookDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.deleted event",
			slog.String("book_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "book deleted", slog.String("book_id", id))

	return nil
}

// validateGenre accepts a nil genre (genre is optional) or one of the
// accepted genre names.
func validateGenre(genre *string) error {
	if genre == nil {
		return nil
	}
	if !domain.IsValidGenre(*genre) {
		return apperrors.InvalidInput(fmt.Sprintf("unknown genre %q", *genre))
	}
	return nil
}

// validateYear accepts a nil year (year is optional) or a year within
// [MinYear, current year + 1].
func validateYear(year *int) error {
	if year == nil {
		return nil
	}
	if *year < domain.MinYear || *year > domain.MaxYear() {
		return apperrors.InvalidInput(fmt.Sprintf("year must be between %d and %d", domain.MinYear, domain.MaxYear()))
	}
	return nil
}
