package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Year  int    `json:"year" validate:"gte=1"`
	Kind  string `json:"kind" validate:"oneof=Major Minor"`
}

func TestDescribe_UsesJSONNames(t *testing.T) {
	err := New().Struct(sample{Email: "nope", Year: 0, Kind: "Other"})
	require.Error(t, err)

	got := Describe(err)
	assert.Contains(t, got, "email: must be a valid email address")
	assert.Contains(t, got, "year: must be at least 1")
	assert.Contains(t, got, "kind: must be one of Major Minor")
}

func TestDescribe_PlainError(t *testing.T) {
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}

func TestNew_Valid(t *testing.T) {
	assert.NoError(t, New().Struct(sample{Email: "a@b.co", Year: 2, Kind: "Major"}))
}
