package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/srakshitha0802/Book-review-application/internal/domain"
	pkgkafka "github.com/srakshitha0802/Book-review-application/pkg/kafka"
	"github.com/srakshitha0802/Book-review-application/pkg/logger"
)

// Kafka topic constants for book and review domain events.
const (
	TopicBookCreated   = "books.book.created"
	TopicBookUpdated   = "books.book.updated"
	TopicBookDeleted   = "books.book.deleted"
	TopicReviewCreated = "books.review.created"
	TopicReviewUpdated = "books.review.updated"
	TopicReviewDeleted = "books.review.deleted"
)

// Entity type constants for the envelope.
const (
	EntityTypeBook   = "book"
	EntityTypeReview = "review"
)

// Source identifier for events originating from this service.
const SourceBookReviewService = "bookreview-service"

// BookEventData is the payload for book.created and book.updated events.
type BookEventData struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Author  string  `json:"author"`
	Genre   *string `json:"genre,omitempty"`
	Year    *int    `json:"year,omitempty"`
	AddedBy string  `json:"added_by"`
}

// BookDeletedData is the payload for a book.deleted event.
type BookDeletedData struct {
	ID string `json:"id"`
}

// ReviewEventData is the payload for review.created and review.updated
// events. It carries the book's refreshed aggregates so consumers never need
// a follow-up read to learn the new average.
type ReviewEventData struct {
	ID           string  `json:"id"`
	BookID       string  `json:"book_id"`
	UserID       string  `json:"user_id"`
	Rating       int     `json:"rating"`
	AvgRating    float64 `json:"avg_rating"`
	ReviewsCount int     `json:"reviews_count"`
}

// ReviewDeletedData is the payload for a review.deleted event.
type ReviewDeletedData struct {
	ID           string  `json:"id"`
	BookID       string  `json:"book_id"`
	AvgRating    float64 `json:"avg_rating"`
	ReviewsCount int     `json:"reviews_count"`
}

// Producer publishes book and review domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishBookCreated publishes a book.created event.
func (p *Producer) PublishBookCreated(ctx context.Context, book *domain.Book) error {
	return p.publishBook(ctx, TopicBookCreated, book)
}

// PublishBookUpdated publishes a book.updated event.
func (p *Producer) PublishBookUpdated(ctx context.Context, book *domain.Book) error {
	return p.publishBook(ctx, TopicBookUpdated, book)
}

func (p *Producer) publishBook(ctx context.Context, topic string, book *domain.Book) error {
	data := BookEventData{
		ID:      book.ID,
		Title:   book.Title,
		Author:  book.Author,
		Genre:   book.Genre,
		Year:    book.Year,
		AddedBy: book.AddedBy,
	}

	event, err := pkgkafka.NewEvent(topic, book.ID, EntityTypeBook,
		SourceBookReviewService, logger.CorrelationIDFromContext(ctx), data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published book event",
		slog.String("topic", topic),
		slog.String("book_id", book.ID),
	)

	return nil
}

// PublishBookDeleted publishes a book.deleted event.
func (p *Producer) PublishBookDeleted(ctx context.Context, id string) error {
	event, err := pkgkafka.NewEvent(TopicBookDeleted, id, EntityTypeBook,
		SourceBookReviewService, logger.CorrelationIDFromContext(ctx), BookDeletedData{ID: id})
	if err != nil {
		return fmt.Errorf("create book.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookDeleted, event); err != nil {
		return fmt.Errorf("publish book.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published book.deleted event", slog.String("book_id", id))

	return nil
}

// PublishReviewCreated publishes a review.created event with the book's
// post-commit aggregates.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review, book *domain.Book) error {
	return p.publishReview(ctx, TopicReviewCreated, review, book)
}

// PublishReviewUpdated publishes a review.updated event with the book's
// post-commit aggregates.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review, book *domain.Book) error {
	return p.publishReview(ctx, TopicReviewUpdated, review, book)
}

func (p *Producer) publishReview(ctx context.Context, topic string, review *domain.Review, book *domain.Book) error {
	data := ReviewEventData{
		ID:     review.ID,
		BookID: review.BookID,
		UserID: review.UserID,
		Rating: review.Rating,
	}
	if book != nil {
		data.AvgRating = book.AvgRating
		data.ReviewsCount = book.ReviewsCount
	}

	event, err := pkgkafka.NewEvent(topic, review.ID, EntityTypeReview,
		SourceBookReviewService, logger.CorrelationIDFromContext(ctx), data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
	)

	return nil
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, reviewID, bookID string, book *domain.Book) error {
	data := ReviewDeletedData{ID: reviewID, BookID: bookID}
	if book != nil {
		data.AvgRating = book.AvgRating
		data.ReviewsCount = book.ReviewsCount
	}

	event, err := pkgkafka.NewEvent(TopicReviewDeleted, reviewID, EntityTypeReview,
		SourceBookReviewService, logger.CorrelationIDFromContext(ctx), data)
	if err != nil {
		return fmt.Errorf("create review.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewDeleted, event); err != nil {
		return fmt.Errorf("publish review.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.deleted event",
		slog.String("review_id", reviewID),
		slog.String("book_id", bookID),
	)

	return nil
}
