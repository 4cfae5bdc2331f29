package domain

import (
	"time"
)

// Profile holds the display identity of a user. The ID matches the subject
// of the user's auth token.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
