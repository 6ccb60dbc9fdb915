package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorMatchesKind(t *testing.T) {
	err := NewDomainError("prereq", "Add", ErrConflict, "edge already exists")

	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "prereq.Add: edge already exists", err.Error())

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, IsConflict(wrapped))
}

func TestWrapErrorKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError("records", "SaveScores", ErrValidation, "cannot save", cause)

	assert.True(t, IsValidation(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}

func TestValidationFormatsMessage(t *testing.T) {
	err := Validation("grading", "ValidateWeights", "weights sum to %.1f", 90.0)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "grading.ValidateWeights: weights sum to 90.0", err.Error())
}
