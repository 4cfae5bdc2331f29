package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/srakshitha0802/Book-review-application/internal/domain"
	"github.com/srakshitha0802/Book-review-application/internal/repository"
	apperrors "github.com/srakshitha0802/Book-review-application/pkg/errors"
)

// ProfileOverview aggregates a user's profile with their books and reviews,
// backing the profile page.
type ProfileOverview struct {
	Profile *domain.Profile `json:"profile"`
	Books   []domain.Book   `json:"books"`
	Reviews []domain.Review `json:"reviews"`
}

// ProfileService implements profile reads and the upsert used to keep the
// display name current.
type ProfileService struct {
	profiles repository.ProfileRepository
	books    repository.BookRepository
	reviews  repository.ReviewRepository
	logger   *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(profiles repository.ProfileRepository, books repository.BookRepository, reviews repository.ReviewRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		books:    books,
		reviews:  reviews,
		logger:   logger,
	}
}

// GetProfile retrieves a profile by user id.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get profile by id: %w", err)
	}
	return profile, nil
}

// UpsertProfile creates or renames a profile.
func (s *ProfileService) UpsertProfile(ctx context.Context, id, name string) (*domain.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	profile := &domain.Profile{ID: id, Name: name}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile upserted", slog.String("user_id", id))

	return profile, nil
}

// GetOverview returns the user's profile together with the books they added
// and the reviews they wrote. A missing profile row yields an empty profile
// rather than an error, since the identity token is the source of truth.
func (s *ProfileService) GetOverview(ctx context.Context, userID string) (*ProfileOverview, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("get profile by id: %w", err)
		}
		profile = &domain.Profile{ID: userID}
	}

	books, err := s.books.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books by owner: %w", err)
	}

	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews by user: %w", err)
	}

	return &ProfileOverview{
		Profile: profile,
		Books:   books,
		Reviews: reviews,
	}, nil
}
