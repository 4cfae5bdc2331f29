package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/srakshitha0802/Book-review-application/internal/domain"
	apperrors "github.com/srakshitha0802/Book-review-application/pkg/errors"
)

func TestGetMe_Success(t *testing.T) {
	env := newTestEnv(t)

	env.profileRepo.On("GetByID", mock.Anything, testReaderID).
		Return(&domain.Profile{ID: testReaderID, Name: "Test Reader"}, nil)
	env.bookRepo.On("ListByOwner", mock.Anything, testReaderID).
		Return([]domain.Book{*sampleBook()}, nil)
	env.reviewRepo.On("ListByUser", mock.Anything, testReaderID).
		Return([]domain.Review{*sampleReview()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", env.bearer(t, testReaderID))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			Profile domain.Profile  `json:"profile"`
			Books   []domain.Book   `json:"books"`
			Reviews []domain.Review `json:"reviews"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	assert.Equal(t, "Test Reader", envelope.Data.Profile.Name)
	assert.Len(t, envelope.Data.Books, 1)
	assert.Len(t, envelope.Data.Reviews, 1)
	env.profileRepo.AssertExpectations(t)
}

func TestGetMe_MissingProfileStillSucceeds(t *testing.T) {
	env := newTestEnv(t)

	env.profileRepo.On("GetByID", mock.Anything, testReaderID).
		Return(nil, apperrors.NotFound("profile", testReaderID))
	env.bookRepo.On("ListByOwner", mock.Anything, testReaderID).Return([]domain.Book{}, nil)
	env.reviewRepo.On("ListByUser", mock.Anything, testReaderID).Return([]domain.Review{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", env.bearer(t, testReaderID))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMe_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
