package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/srakshitha0802/Book-review-application/internal/domain"
	"github.com/srakshitha0802/Book-review-application/internal/repository"
	"github.com/srakshitha0802/Book-review-application/pkg/database"
	apperrors "github.com/srakshitha0802/Book-review-application/pkg/errors"
)

const bookColumns = "id, title, author, description, genre, year, added_by, avg_rating, reviews_count, created_at, updated_at"

// BookRepository implements repository.BookRepository using PostgreSQL.
type BookRepository struct {
	db database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(db database.DBTX) *BookRepository {
	return &BookRepository{db: db}
}

// Create inserts a new book into the database.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		b.ID,
		b.Title,
		b.Author,
		b.Description,
		b.Genre,
		b.Year,
		b.AddedBy,
		b.AvgRating,
		b.ReviewsCount,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return dbError("insert book", err)
	}

	return nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetBook", query)

	var b domain.Book
	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Description,
		&b.Genre,
		&b.Year,
		&b.AddedBy,
		&b.AvgRating,
		&b.ReviewsCount,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("book", id)
		}
		return nil, dbError("scan book", err)
	}

	return &b, nil
}

// List returns books matching the given criteria with the total matching count.
// Filters combine conjunctively; ordering falls back to created_at ASC, id ASC
// so equal sort keys always yield the same page composition.
func (r *BookRepository) List(ctx context.Context, criteria repository.CatalogCriteria) ([]domain.Book, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if criteria.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*criteria.Search+"%")
		argIndex++
	}

	if criteria.Genre != nil {
		conditions = append(conditions, fmt.Sprintf("genre = $%d", argIndex))
		args = append(args, *criteria.Genre)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// count(*) OVER() returns the total matching rows in the same query.
	query := fmt.Sprintf(`
		SELECT `+bookColumns+`,
			   count(*) OVER() AS total_count
		FROM books
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		whereClause, orderClause(criteria.SortBy, criteria.SortDir), argIndex, argIndex+1,
	)

	limit := criteria.PerPage
	if limit <= 0 {
		limit = 5
	}
	offset := 0
	if criteria.Page > 1 {
		offset = (criteria.Page - 1) * limit
	}

	args = append(args, limit, offset)

	ctx, end := database.TraceQuery(ctx, "ListBooks", query)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		end(err)
		return nil, 0, dbError("list books", err)
	}
	defer rows.Close()

	var (
		books      []domain.Book
		totalCount int
	)

	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Author,
			&b.Description,
			&b.Genre,
			&b.Year,
			&b.AddedBy,
			&b.AvgRating,
			&b.ReviewsCount,
			&b.CreatedAt,
			&b.UpdatedAt,
			&totalCount,
		); err != nil {
			end(err)
			return nil, 0, dbError("scan book row", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, 0, dbError("iterate book rows", err)
	}
	end(nil)

	// count(*) OVER() rides on the returned rows, so a page past the end
	// comes back with no rows and no total. Recount with the same filters
	// so the caller still learns how many books actually match.
	if len(books) == 0 && offset > 0 {
		total, err := r.countMatching(ctx, whereClause, args[:argIndex-1])
		if err != nil {
			return nil, 0, err
		}
		totalCount = total
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, totalCount, nil
}

func (r *BookRepository) countMatching(ctx context.Context, whereClause string, args []any) (int, error) {
	query := strings.TrimSpace("SELECT count(*) FROM books " + whereClause)

	ctx, end := database.TraceQuery(ctx, "CountBooks", query)

	var total int
	err := r.db.QueryRow(ctx, query, args...).Scan(&total)
	end(err)
	if err != nil {
		return 0, dbError("count books", err)
	}

	return total, nil
}

// ListByOwner returns all books added by the given user, newest first.
func (r *BookRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Book, error) {
	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE added_by = $1
		ORDER BY created_at DESC, id ASC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, dbError("list books by owner", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Author,
			&b.Description,
			&b.Genre,
			&b.Year,
			&b.AddedBy,
			&b.AvgRating,
			&b.ReviewsCount,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, dbError("scan book row", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError("iterate book rows", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, nil
}

// Update modifies an existing book. The aggregate columns avg_rating and
// reviews_count are owned by the review repository and left untouched here.
func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE books
		SET title = $1, author = $2, description = $3, genre = $4, year = $5, updated_at = $6
		WHERE id = $7`

	ct, err := r.db.Exec(ctx, query,
		b.Title,
		b.Author,
		b.Description,
		b.Genre,
		b.Year,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return dbError("update book", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", b.ID)
	}

	return nil
}

// Delete removes a book and its reviews in one transaction. The reviews FK
// carries ON DELETE CASCADE as backstop, but deleting explicitly keeps the
// intent visible and the row counts observable.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dbError("begin delete book tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE book_id = $1`, id); err != nil {
		return dbError("delete book reviews", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return dbError("delete book", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("book", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return dbError("commit delete book tx", err)
	}

	return nil
}

// orderClause maps validated sort criteria to an ORDER BY expression with the
// created_at ASC, id ASC tie-break. Sort inputs are validated by the service
// layer; anything unrecognized falls back to newest first.
func orderClause(field domain.SortField, dir domain.SortDirection) string {
	column := "created_at"
	switch field {
	case domain.SortByAvgRating:
		column = "avg_rating"
	case domain.SortByTitle:
		column = "title"
	case domain.SortByYear:
		column = "year"
	case domain.SortByCreatedAt:
		column = "created_at"
	}

	direction := "DESC"
	if dir == domain.SortAsc {
		direction = "ASC"
	}

	return fmt.Sprintf("%s %s, created_at ASC, id ASC", column, direction)
}
