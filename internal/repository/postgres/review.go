package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/srakshitha0802/Book-review-application/internal/domain"
	"github.com/srakshitha0802/Book-review-application/pkg/database"
	apperrors "github.com/srakshitha0802/Book-review-application/pkg/errors"
)

const reviewColumns = "id, book_id, user_id, rating, review_text, created_at, updated_at"

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
// Every mutation refreshes the parent book's avg_rating and reviews_count
// inside the same transaction, so committed aggregates always reflect the
// committed set of reviews.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review and refreshes the book's aggregates in one
// transaction. A second review by the same user for the same book trips the
// unique index on (book_id, user_id); that unique violation, not a prior
// read, is what produces the conflict result, so two racing submits resolve
// to exactly one winner.
func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) (err error) {
	query := `
		INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dbError("begin create review tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, query,
		rev.ID,
		rev.BookID,
		rev.UserID,
		rev.Rating,
		rev.ReviewText,
		rev.CreatedAt,
		rev.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("you have already reviewed this book")
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("book", rev.BookID)
		}
		return dbError("insert review", err)
	}

	if err := refreshBookAggregates(ctx, tx, rev.BookID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return dbError("commit create review tx", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE id = $1`

	return r.scanReview(ctx, query, id)
}

// GetByBookAndUser retrieves the review a user wrote for a book.
func (r *ReviewRepository) GetByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE book_id = $1 AND user_id = $2`

	return r.scanReview(ctx, query, bookID, userID)
}

// ListForBook returns a book's reviews newest first, joined with the
// reviewer's profile name, plus the total review count for the book.
func (r *ReviewRepository) ListForBook(ctx context.Context, bookID string, page, perPage int) ([]domain.Review, int, error) {
	query := `
		SELECT r.id, r.book_id, r.user_id, r.rating, r.review_text, r.created_at, r.updated_at,
			   COALESCE(p.name, '') AS reviewer_name,
			   count(*) OVER() AS total_count
		FROM reviews r
		LEFT JOIN profiles p ON p.id = r.user_id
		WHERE r.book_id = $1
		ORDER BY r.created_at DESC, r.id ASC
		LIMIT $2 OFFSET $3`

	limit := perPage
	if limit <= 0 {
		limit = 5
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	ctx, end := database.TraceQuery(ctx, "ListReviewsForBook", query)

	rows, err := r.db.Query(ctx, query, bookID, limit, offset)
	if err != nil {
		end(err)
		return nil, 0, dbError("list reviews for book", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID,
			&rev.BookID,
			&rev.UserID,
			&rev.Rating,
			&rev.ReviewText,
			&rev.CreatedAt,
			&rev.UpdatedAt,
			&rev.ReviewerName,
			&totalCount,
		); err != nil {
			end(err)
			return nil, 0, dbError("scan review row", err)
		}
		reviews = append(reviews, rev)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, 0, dbError("iterate review rows", err)
	}
	end(nil)

	// A page past the end returns no rows, and with them goes the
	// count(*) OVER() total. Recount so pagination stays truthful.
	if len(reviews) == 0 && offset > 0 {
		countQuery := `SELECT count(*) FROM reviews WHERE book_id = $1`
		cctx, cend := database.TraceQuery(ctx, "CountReviewsForBook", countQuery)
		err := r.db.QueryRow(cctx, countQuery, bookID).Scan(&totalCount)
		cend(err)
		if err != nil {
			return nil, 0, dbError("count reviews for book", err)
		}
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// ListByUser returns all reviews written by the given user, newest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC, id ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, dbError("list reviews by user", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID,
			&rev.BookID,
			&rev.UserID,
			&rev.Rating,
			&rev.ReviewText,
			&rev.CreatedAt,
			&rev.UpdatedAt,
		); err != nil {
			return nil, dbError("scan review row", err)
		}
		reviews = append(reviews, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError("iterate review rows", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, nil
}

// Update modifies a review's rating and text, then refreshes the book's
// aggregates in the same transaction.
func (r *ReviewRepository) Update(ctx context.Context, rev *domain.Review) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dbError("begin update review tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rev.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE reviews
		SET rating = $1, review_text = $2, updated_at = $3
		WHERE id = $4`

	ct, err := tx.Exec(ctx, query, rev.Rating, rev.ReviewText, rev.UpdatedAt, rev.ID)
	if err != nil {
		return dbError("update review", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", rev.ID)
	}

	if err := refreshBookAggregates(ctx, tx, rev.BookID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return dbError("commit update review tx", err)
	}

	return nil
}

// Delete removes a review and refreshes the book's aggregates in the same
// transaction. The review is read inside the transaction to learn its book.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dbError("begin delete review tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var bookID string
	err = tx.QueryRow(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING book_id`, id).Scan(&bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("review", id)
		}
		return dbError("delete review", err)
	}

	if err := refreshBookAggregates(ctx, tx, bookID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return dbError("commit delete review tx", err)
	}

	return nil
}

// refreshBookAggregates recomputes avg_rating and reviews_count for the book
// from its full review set, on the caller's transaction. The book row is
// locked before the recompute so concurrent mutations on the same book
// serialize here; without the lock, the recompute's subquery could run
// against a snapshot that predates a competing transaction's commit and
// write back stale aggregates. A missing book row means the book was deleted
// mid-flight and the cascade already removed its reviews, so there is
// nothing left to refresh. This full recompute is the only writer of the
// aggregate columns.
func refreshBookAggregates(ctx context.Context, tx pgx.Tx, bookID string) error {
	var locked string
	err := tx.QueryRow(ctx, `SELECT id FROM books WHERE id = $1 FOR UPDATE`, bookID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return dbError("lock book for aggregate refresh", err)
	}

	query := `
		UPDATE books
		SET avg_rating = agg.avg_rating, reviews_count = agg.reviews_count
		FROM (
			SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS reviews_count
			FROM reviews
			WHERE book_id = $1
		) AS agg
		WHERE books.id = $1`

	if _, err := tx.Exec(ctx, query, bookID); err != nil {
		return dbError("refresh book aggregates", err)
	}

	return nil
}

// scanReview executes a query expected to return a single review row.
func (r *ReviewRepository) scanReview(ctx context.Context, query string, args ...any) (*domain.Review, error) {
	var rev domain.Review
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&rev.ID,
		&rev.BookID,
		&rev.UserID,
		&rev.Rating,
		&rev.ReviewText,
		&rev.CreatedAt,
		&rev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, dbError("scan review", err)
	}

	return &rev, nil
}
