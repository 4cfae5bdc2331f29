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

// ReviewEventPublisher publishes review domain events. Satisfied by
// event.Producer; abstracted so tests can substitute a mock.
type ReviewEventPublisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review, book *domain.Book) error
	PublishReviewUpdated(ctx context.Context, review *domain.Review, book *domain.Book) error
	PublishReviewDeleted(ctx context.Context, reviewID, bookID string, book *domain.Book) error
}

// ReviewService implements the business logic for review operations. The
// one-review-per-(book,user) rule and aggregate freshness are enforced by the
// repository's transactions; this layer owns input validation and authorship.
type ReviewService struct {
	repo     repository.ReviewRepository
	books    repository.BookRepository
	producer ReviewEventPublisher
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, books repository.BookRepository, producer ReviewEventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		books:    books,
		producer: producer,
		logger:   logger,
	}
}

// SubmitReview records authorID's review of a book. A rating outside [1,5]
// is InvalidInput. A second review by the same author for the same book
// surfaces as Conflict, derived from the storage unique violation rather
// than a read-then-write check, so concurrent submits race safely.
func (s *ReviewService) SubmitReview(ctx context.Context, bookID, authorID string, rating int, text string) (*domain.Review, error) {
	if !domain.IsValidRating(rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:         uuid.New().String(),
		BookID:     bookID,
		UserID:     authorID,
		Rating:     rating,
		ReviewText: strings.TrimSpace(text),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}

	s.publish(ctx, review, reviewEventCreated)

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("book_id", bookID),
		slog.Int("rating", rating),
	)

	return review, nil
}

// AmendReview updates the rating and text of an existing review. Only the
// review's author may amend it.
func (s *ReviewService) AmendReview(ctx context.Context, reviewID, authorID string, rating int, text string) (*domain.Review, error) {
	if !domain.IsValidRating(rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}

	if !domain.CanMutate(authorID, review.UserID) {
		return nil, apperrors.Forbidden("only the author can amend this review")
	}

	review.Rating = rating
	review.ReviewText = strings.TrimSpace(text)

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("amend review: %w", err)
	}

	s.publish(ctx, review, reviewEventUpdated)

	s.logger.InfoContext(ctx, "review amended",
		slog.String("review_id", review.ID),
		slog.Int("rating", rating),
	)

	return review, nil
}

// WithdrawReview removes a review. Only the review's author may withdraw it.
func (s *ReviewService) WithdrawReview(ctx context.Context, reviewID, authorID string) error {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("get review by id: %w", err)
	}

	if !domain.CanMutate(authorID, review.UserID) {
		return apperrors.Forbidden("only the author can withdraw this review")
	}

	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("withdraw review: %w", err)
	}

	book, err := s.books.GetByID(ctx, review.BookID)
	if err != nil {
		book = nil // book may have been deleted concurrently
	}
	if err := s.producer.PublishReviewDeleted(ctx, reviewID, review.BookID, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", reviewID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review withdrawn",
		slog.String("review_id", reviewID),
		slog.String("book_id", review.BookID),
	)

	return nil
}

// ListReviewsForBook returns a book's reviews newest first with reviewer
// names and the total count.
func (s *ReviewService) ListReviewsForBook(ctx context.Context, bookID string, page, perPage int) ([]domain.Review, int, error) {
	if page < 1 {
		page = 1
	}
	reviews, total, err := s.repo.ListForBook(ctx, bookID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews for book: %w", err)
	}
	return reviews, total, nil
}

// FindReviewByAuthor returns the review authorID wrote for a book, or
// NotFound when none exists. Used to decide between the submit and amend
// paths up front.
func (s *ReviewService) FindReviewByAuthor(ctx context.Context, bookID, authorID string) (*domain.Review, error) {
	review, err := s.repo.GetByBookAndUser(ctx, bookID, authorID)
	if err != nil {
		return nil, fmt.Errorf("find review by author: %w", err)
	}
	return review, nil
}

// ListReviewsByUser returns all reviews written by the given user.
func (s *ReviewService) ListReviewsByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	reviews, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}
	return reviews, nil
}

type reviewEventKind int

const (
	reviewEventCreated reviewEventKind = iota
	reviewEventUpdated
)

// publish emits a review event carrying the book's post-commit aggregates.
// Publishing failures never fail the mutation.
func (s *ReviewService) publish(ctx context.Context, review *domain.Review, kind reviewEventKind) {
	book, err := s.books.GetByID(ctx, review.BookID)
	if err != nil {
		book = nil
	}

	if kind == reviewEventCreated {
		err = s.producer.PublishReviewCreated(ctx, review, book)
	} else {
		err = s.producer.PublishReviewUpdated(ctx, review, book)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
}
