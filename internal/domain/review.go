package domain

import (
	"time"
)

// Rating bounds for a review.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a single user's review of a book. At most one review
// exists per (book, user) pair, enforced by a unique index in storage.
type Review struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// ReviewerName is the profile name of the review's author, populated
	// by list queries that join against profiles. Empty elsewhere.
	ReviewerName string `json:"reviewer_name,omitempty"`
}

// IsValidRating checks whether the rating is within the accepted range.
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
