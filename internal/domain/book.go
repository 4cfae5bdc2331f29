package domain

import (
	"time"
)

// Genre constants. The catalog only accepts books tagged with one of these.
const (
	GenreFiction        = "Fiction"
	GenreNonFiction     = "Non-Fiction"
	GenreScienceFiction = "Science Fiction"
	GenreFantasy        = "Fantasy"
	GenreMystery        = "Mystery"
	GenreThriller       = "Thriller"
	GenreRomance        = "Romance"
	GenreBiography      = "Biography"
)

// Publication year bounds. MaxYear is relative to the current year so books
// announced for next year can be added ahead of release.
const MinYear = 1000

// MaxYear returns the latest accepted publication year.
func MaxYear() int {
	return time.Now().Year() + 1
}

// Book represents a book in the catalog together with its review aggregates.
// AvgRating and ReviewsCount are derived columns maintained by the review
// repository; they are never written by the book path.
type Book struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Description  string    `json:"description,omitempty"`
	Genre        *string   `json:"genre,omitempty"`
	Year         *int      `json:"year,omitempty"`
	AddedBy      string    `json:"added_by"`
	AvgRating    float64   `json:"avg_rating"`
	ReviewsCount int       `json:"reviews_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidGenres returns the set of accepted genres.
func ValidGenres() []string {
	return []string{
		GenreFiction,
		GenreNonFiction,
		GenreScienceFiction,
		GenreFantasy,
		GenreMystery,
		GenreThriller,
		GenreRomance,
		GenreBiography,
	}
}

// IsValidGenre checks whether the given genre is one of the accepted genres.
func IsValidGenre(genre string) bool {
	for _, g := range ValidGenres() {
		if g == genre {
			return true
		}
	}
	return false
}

// SortField identifies a catalog sort column.
type SortField string

// Catalog sort fields.
const (
	SortByCreatedAt SortField = "created_at"
	SortByAvgRating SortField = "avg_rating"
	SortByTitle     SortField = "title"
	SortByYear      SortField = "year"
)

// SortDirection identifies the sort order.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// IsValidSortField checks whether the given field is a supported sort column.
func IsValidSortField(f SortField) bool {
	switch f {
	case SortByCreatedAt, SortByAvgRating, SortByTitle, SortByYear:
		return true
	}
	return false
}

// IsValidSortDirection checks whether the given direction is supported.
func IsValidSortDirection(d SortDirection) bool {
	return d == SortAsc || d == SortDesc
}
