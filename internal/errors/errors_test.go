package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := DuplicateNamef("tag %q already exists", "Preeclampsia")

	assert.True(t, Is(err, ErrDuplicateName))
	assert.False(t, Is(err, ErrNotFound))
	assert.Equal(t, `tag "Preeclampsia" already exists`, err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("merge: %w", NotFoundf("tag %s not found", "tag-1"))

	assert.True(t, Is(err, ErrNotFound))
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestError_WithCauseUnwraps(t *testing.T) {
	cause := New("disk full")
	err := ErrInternal.WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal error: disk full", err.Error())
	// Sentinel must not be mutated.
	assert.Nil(t, ErrInternal.Unwrap())
}

func TestError_WithDetails(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{"name": "is required"})
	assert.Equal(t, map[string]string{"name": "is required"}, err.Details)

	copied := err.WithDetails("other")
	assert.Equal(t, "other", copied.Details)
	assert.Equal(t, CodeValidation, copied.Code)
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(New("boom")))
}

func TestClassifierParseFailure(t *testing.T) {
	err := ClassifierParseFailure(New("unexpected EOF"))
	assert.True(t, Is(err, ErrClassifierParseFailure))
	assert.Contains(t, err.Error(), "unexpected EOF")
}
