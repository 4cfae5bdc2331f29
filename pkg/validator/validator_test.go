package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitReview struct {
	Rating int    `validate:"required,min=1,max=5"`
	Text   string `validate:"max=20"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(submitReview{Rating: 4, Text: "great read"})
	assert.NoError(t, err)
}

func TestValidate_RatingOutOfRange(t *testing.T) {
	err := Validate(submitReview{Rating: 6})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Fields(), "Rating")
	assert.Contains(t, valErr.Error(), "Rating")
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate(submitReview{})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "is required", valErr.Fields()["Rating"])
}

func TestValidate_MaxLength(t *testing.T) {
	err := Validate(submitReview{Rating: 3, Text: "this text is far too long for the tag"})

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Fields()["Text"], "at most")
}
