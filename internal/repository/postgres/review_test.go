package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srakshitha0802/Book-review-application/internal/domain"
	"github.com/srakshitha0802/Book-review-application/pkg/database"
	apperrors "github.com/srakshitha0802/Book-review-application/pkg/errors"
)

// --- Test Helpers ---

func newReviewTestRepo(t *testing.T) (*ReviewRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewReviewRepository(mock)
	return repo, mock
}

func sampleReview() *domain.Review {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Review{
		ID:         "review-001",
		BookID:     "book-001",
		UserID:     "user-001",
		Rating:     4,
		ReviewText: "A gripping read.",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// --- Create Tests ---

func TestReviewRepository_Create_Success(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	rev := sampleReview()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rev.ID, rev.BookID, rev.UserID, rev.Rating, rev.ReviewText, rev.CreatedAt, rev.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT id FROM books WHERE id = \\$1 FOR UPDATE").
		WithArgs(rev.BookID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(rev.BookID))
	mock.ExpectExec("UPDATE books").
		WithArgs(rev.BookID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), rev)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_LocksBookRowBeforeRecompute(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	rev := sampleReview()

	// Expectations are ordered: the row lock must come between the insert
	// and the aggregate recompute. Two racing mutations on the same book
	// both queue on this lock, so the loser recomputes only after the
	// winner's review is committed and visible.
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rev.ID, rev.BookID, rev.UserID, rev.Rating, rev.ReviewText, rev.CreatedAt, rev.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT id FROM books WHERE id = \\$1 FOR UPDATE").
		WithArgs(rev.BookID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(rev.BookID))
	mock.ExpectExec("UPDATE books").
		WithArgs(rev.BookID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), rev)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_DuplicateIsConflict(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	rev := sampleReview()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rev.ID, rev.BookID, rev.UserID, rev.Rating, rev.ReviewText, rev.CreatedAt, rev.UpdatedAt).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "reviews_book_id_user_id_key" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), rev)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_MissingBookIsNotFound(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	rev := sampleReview()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rev.ID, rev.BookID, rev.UserID, rev.Rating, rev.ReviewText, rev.CreatedAt, rev.UpdatedAt).
		WillReturnError(errors.New(`ERROR: insert or update on table "reviews" violates foreign key constraint (SQLSTATE 23503)`))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), rev)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_AggregateRefreshFailureRollsBack(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	rev := sampleReview()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rev.ID, rev.BookID, rev.UserID, rev.Rating, rev.ReviewText, rev.CreatedAt, rev.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT id FROM books WHERE id = \\$1 FOR UPDATE").
		WithArgs(rev.BookID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(rev.BookID))
	mock.ExpectExec("UPDATE books").
		WithArgs(rev.BookID).
		WillReturnError(errors.New("query canceled"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), rev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh book aggregates")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_BeginError(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), sampleReview())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "begin create review tx")

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Update Tests ---

func TestReviewRepository_Update_Success(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	rev := sampleReview()
	rev.Rating = 2
	rev.ReviewText = "Fell apart in the second half."

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reviews").
		WithArgs(rev.Rating, rev.ReviewText, pgxmock.AnyArg(), rev.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT id FROM books WHERE id = \\$1 FOR UPDATE").
		WithArgs(rev.BookID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(rev.BookID))
	mock.ExpectExec("UPDATE books").
		WithArgs(rev.BookID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), rev)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Update_NotFound(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	rev := sampleReview()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE reviews").
		WithArgs(rev.Rating, rev.ReviewText, pgxmock.AnyArg(), rev.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), rev)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Delete Tests ---

func TestReviewRepository_Delete_Success(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM reviews").
		WithArgs("review-001").
		WillReturnRows(pgxmock.NewRows([]string{"book_id"}).AddRow("book-001"))
	mock.ExpectQuery("SELECT id FROM books WHERE id = \\$1 FOR UPDATE").
		WithArgs("book-001").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("book-001"))
	mock.ExpectExec("UPDATE books").
		WithArgs("book-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "review-001")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM reviews").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Delete_BookAlreadyGoneIsNoOp(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	// The lock finding no book row means the book disappeared mid-flight;
	// the refresh is skipped entirely and the delete still commits.
	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM reviews").
		WithArgs("review-001").
		WillReturnRows(pgxmock.NewRows([]string{"book_id"}).AddRow("book-001"))
	mock.ExpectQuery("SELECT id FROM books WHERE id = \\$1 FOR UPDATE").
		WithArgs("book-001").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "review-001")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// --- Read Tests ---

func TestReviewRepository_GetByBookAndUser_Success(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	rev := sampleReview()

	mock.ExpectQuery("SELECT (.+) FROM reviews").
		WithArgs(rev.BookID, rev.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "book_id", "user_id", "rating", "review_text", "created_at", "updated_at"}).
			AddRow(rev.ID, rev.BookID, rev.UserID, rev.Rating, rev.ReviewText, rev.CreatedAt, rev.UpdatedAt))

	got, err := repo.GetByBookAndUser(context.Background(), rev.BookID, rev.UserID)
	require.NoError(t, err)
	assert.Equal(t, rev.ID, got.ID)
	assert.Equal(t, rev.Rating, got.Rating)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListForBook_JoinsReviewerName(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	now := time.Now().UTC().Truncate(time.Microsecond)
	rows := pgxmock.NewRows([]string{"id", "book_id", "user_id", "rating", "review_text", "created_at", "updated_at", "reviewer_name", "total_count"}).
		AddRow("review-002", "book-001", "user-002", 5, "Loved it.", now, now, "Bob Reader", 2).
		AddRow("review-001", "book-001", "user-001", 3, "Decent.", now.Add(-time.Hour), now.Add(-time.Hour), "Alice Reader", 2)

	mock.ExpectQuery("SELECT (.+) FROM reviews r").
		WithArgs("book-001", 5, 0).
		WillReturnRows(rows)

	reviews, total, err := repo.ListForBook(context.Background(), "book-001", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Bob Reader", reviews[0].ReviewerName)
	assert.Equal(t, "Alice Reader", reviews[1].ReviewerName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListForBook_EmptyPage(t *testing.T) {
	repo, mock := newReviewTestRepo(t)

	// No rows on a past-the-end page also means no windowed total, so the
	// repository recounts the book's reviews directly.
	mock.ExpectQuery("SELECT (.+) FROM reviews r").
		WithArgs("book-001", 5, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "book_id", "user_id", "rating", "review_text", "created_at", "updated_at", "reviewer_name", "total_count"}))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM reviews WHERE book_id = \\$1").
		WithArgs("book-001").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))

	reviews, total, err := repo.ListForBook(context.Background(), "book-001", 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Empty(t, reviews)
	assert.NotNil(t, reviews)

	assert.NoError(t, mock.ExpectationsWereMet())
}
