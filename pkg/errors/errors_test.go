package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidState, "cannot do that")
	assert.Equal(t, "[CRVW6003] ERROR: cannot do that", err.Error())
	assert.Equal(t, ErrCodeInvalidState, err.Code)
	assert.NotEmpty(t, err.Stack)
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, ErrCodeGit, "git operation failed")

	assert.Contains(t, err.Error(), "git operation failed")
	assert.Contains(t, err.Error(), "underlying failure")
	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, ErrCodeGit, appErr.Code)
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := New(ErrCodeConcurrentUpdate, "remote advanced")
	target := New(ErrCodeConcurrentUpdate, "different message")
	assert.ErrorIs(t, err, target, "errors with the same code compare equal")

	other := New(ErrCodeRepoDirty, "dirty")
	assert.NotErrorIs(t, err, other)
}

func TestWithContextAndSuggestions(t *testing.T) {
	err := New(ErrCodeObjectUnknown, "no such commit").
		WithContext("object", "deadbeef").
		WithSuggestions("Run 'codereview list' to see tracked commits")

	assert.Equal(t, "deadbeef", err.Context["object"])
	require.Len(t, err.Suggestions, 1)
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeRepoDirty, GetErrorCode(New(ErrCodeRepoDirty, "dirty")))
	assert.Equal(t, ErrCodeInternal, GetErrorCode(fmt.Errorf("plain error")))

	wrapped := fmt.Errorf("outer: %w", New(ErrCodeGit, "inner"))
	assert.Equal(t, ErrCodeGit, GetErrorCode(wrapped))
}

func TestConstructors(t *testing.T) {
	t.Run("concurrency", func(t *testing.T) {
		err := ConcurrencyError("record moved", nil)
		assert.Equal(t, ErrCodeConcurrentUpdate, err.Code)
		assert.NotEmpty(t, err.Suggestions, "concurrency losers are told to retry")
	})

	t.Run("ambiguous object", func(t *testing.T) {
		err := AmbiguousObjectError("abc", []string{"x/abc1.patch", "y/abc2.patch"})
		assert.Equal(t, ErrCodeObjectAmbiguous, err.Code)
		assert.Contains(t, err.Error(), "abc")
	})

	t.Run("unknown object", func(t *testing.T) {
		err := UnknownObjectError("deadbeef")
		assert.Equal(t, ErrCodeObjectUnknown, err.Code)
	})

	t.Run("config", func(t *testing.T) {
		err := ConfigError("missing setting", "audit.path")
		assert.Equal(t, ErrCodeConfigInvalid, err.Code)
		assert.Equal(t, "audit.path", err.Context["field"])
	})
}

func TestIsRecoverable(t *testing.T) {
	recoverable := New(ErrCodeRepoSyncFailed, "transient").AsRecoverable()
	assert.True(t, IsRecoverable(recoverable))
	assert.False(t, IsRecoverable(New(ErrCodeConfigNotFound, "fatal")))
	assert.False(t, IsRecoverable(fmt.Errorf("plain")))
}
