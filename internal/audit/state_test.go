package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseState(t *testing.T) {
	for _, s := range []string{"review", "Locked", "APPROVED", "concerns", "comment", "resigned"} {
		_, err := ParseState(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseState("shipped")
	assert.Error(t, err)
	_, err = ParseState("unknown")
	assert.Error(t, err, "unknown is not a caller-suppliable state")
}

func TestStateClassification(t *testing.T) {
	assert.True(t, StateReview.PathEncoded())
	assert.True(t, StateLocked.PathEncoded())
	assert.True(t, StateApproved.PathEncoded())
	assert.True(t, StateConcerns.PathEncoded())
	assert.False(t, StateComment.PathEncoded())
	assert.False(t, StateResigned.PathEncoded())

	assert.True(t, StateApproved.Terminal())
	assert.True(t, StateConcerns.Terminal())
	assert.False(t, StateReview.Terminal())
	assert.False(t, StateLocked.Terminal())
}
