package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srakshitha0802/Book-review-application/internal/auth"
	"github.com/srakshitha0802/Book-review-application/internal/domain"
	"github.com/srakshitha0802/Book-review-application/internal/repository"
	"github.com/srakshitha0802/Book-review-application/internal/service"
	"github.com/srakshitha0802/Book-review-application/pkg/health"
	"github.com/srakshitha0802/Book-review-application/pkg/httputil"
	"github.com/srakshitha0802/Book-review-application/pkg/middleware"
)

// ============================================================================
// Mock repositories and publishers
// ============================================================================

type mockBookRepository struct {
	mock.Mock
}

func (m *mockBookRepository) Create(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *mockBookRepository) List(ctx context.Context, criteria repository.CatalogCriteria) ([]domain.Book, int, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Book), args.Int(1), args.Error(2)
}

func (m *mockBookRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Book, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Book), args.Error(1)
}

func (m *mockBookRepository) Update(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) GetByBookAndUser(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	args := m.Called(ctx, bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) ListForBook(ctx context.Context, bookID string, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, bookID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

type mockBookPublisher struct {
	mock.Mock
}

func (m *mockBookPublisher) PublishBookCreated(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookPublisher) PublishBookUpdated(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *mockBookPublisher) PublishBookDeleted(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockReviewPublisher struct {
	mock.Mock
}

func (m *mockReviewPublisher) PublishReviewCreated(ctx context.Context, review *domain.Review, book *domain.Book) error {
	args := m.Called(ctx, review, book)
	return args.Error(0)
}

func (m *mockReviewPublisher) PublishReviewUpdated(ctx context.Context, review *domain.Review, book *domain.Book) error {
	args := m.Called(ctx, review, book)
	return args.Error(0)
}

func (m *mockReviewPublisher) PublishReviewDeleted(ctx context.Context, reviewID, bookID string, book *domain.Book) error {
	args := m.Called(ctx, reviewID, bookID, book)
	return args.Error(0)
}

// ============================================================================
// Test environment
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testEnv wires mock repositories into real services behind the production
// router, so tests exercise the full middleware chain.
type testEnv struct {
	bookRepo    *mockBookRepository
	reviewRepo  *mockReviewRepository
	profileRepo *mockProfileRepository
	jwt         *auth.JWTManager
	router      http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := testLogger()
	bookRepo := new(mockBookRepository)
	reviewRepo := new(mockReviewRepository)
	profileRepo := new(mockProfileRepository)

	bookPub := new(mockBookPublisher)
	bookPub.On("PublishBookCreated", mock.Anything, mock.Anything).Return(nil).Maybe()
	bookPub.On("PublishBookUpdated", mock.Anything, mock.Anything).Return(nil).Maybe()
	bookPub.On("PublishBookDeleted", mock.Anything, mock.Anything).Return(nil).Maybe()

	reviewPub := new(mockReviewPublisher)
	reviewPub.On("PublishReviewCreated", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	reviewPub.On("PublishReviewUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	reviewPub.On("PublishReviewDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	router := NewRouter(RouterConfig{
		Books:           service.NewBookService(bookRepo, bookPub, logger),
		Catalog:         service.NewCatalogService(bookRepo, logger),
		Reviews:         service.NewReviewService(reviewRepo, bookRepo, reviewPub, logger),
		Profiles:        service.NewProfileService(profileRepo, bookRepo, reviewRepo, logger),
		JWT:             jwtManager,
		DevTokenEnabled: true,
		TokenExpiry:     time.Hour,
		Health:          health.NewHandler(),
		CORS:            middleware.DefaultCORSConfig(),
		Logger:          logger,
	})

	return &testEnv{
		bookRepo:    bookRepo,
		reviewRepo:  reviewRepo,
		profileRepo: profileRepo,
		jwt:         jwtManager,
		router:      router,
	}
}

func (e *testEnv) bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.jwt.GenerateAccessToken(userID, "reader@example.com", "Test Reader")
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

// ============================================================================
// Sample domain objects
// ============================================================================

const (
	testBookID   = "550e8400-e29b-41d4-a716-446655440001"
	testReviewID = "550e8400-e29b-41d4-a716-446655440002"
	testOwnerID  = "550e8400-e29b-41d4-a716-446655440003"
	testReaderID = "550e8400-e29b-41d4-a716-446655440004"
)

func sampleBook() *domain.Book {
	now := time.Now().UTC()
	genre := domain.GenreFantasy
	year := 1954
	return &domain.Book{
		ID:           testBookID,
		Title:        "The Fellowship of the Ring",
		Author:       "J.R.R. Tolkien",
		Description:  "The first part of the trilogy.",
		Genre:        &genre,
		Year:         &year,
		AddedBy:      testOwnerID,
		AvgRating:    4.5,
		ReviewsCount: 2,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func sampleReview() *domain.Review {
	now := time.Now().UTC()
	return &domain.Review{
		ID:         testReviewID,
		BookID:     testBookID,
		UserID:     testReaderID,
		Rating:     5,
		ReviewText: "A classic.",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
