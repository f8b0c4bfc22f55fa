package audit

import (
	"fmt"
	"strings"

	"codereview/pkg/errors"
)

// State is the review lifecycle stage of a record. For the path-encoded
// states the record's directory location is the literal state; comment and
// resigned are recorded in the audit log without moving the file.
type State string

const (
	StateReview   State = "review"
	StateLocked   State = "locked"
	StateApproved State = "approved"
	StateConcerns State = "concerns"
	StateComment  State = "comment"
	StateResigned State = "resigned"
	StateUnknown  State = "unknown"
)

// stateDirs maps the path directory segment to its state. Matching is
// case-insensitive on parse; the canonical directory casing is what Dir
// returns.
var stateDirs = map[State]string{
	StateReview:   "Review",
	StateApproved: "Approved",
	StateConcerns: "Concerns",
}

// ParseState validates a state name supplied by a caller
func ParseState(s string) (State, error) {
	switch State(strings.ToLower(s)) {
	case StateReview:
		return StateReview, nil
	case StateLocked:
		return StateLocked, nil
	case StateApproved:
		return StateApproved, nil
	case StateConcerns:
		return StateConcerns, nil
	case StateComment:
		return StateComment, nil
	case StateResigned:
		return StateResigned, nil
	}
	return StateUnknown, errors.New(errors.ErrCodeInvalidState,
		fmt.Sprintf("unrecognized state %q", s))
}

// Dir returns the canonical directory segment for a path-encoded state
func (s State) Dir() string {
	return stateDirs[s]
}

// PathEncoded reports whether the state is represented by a directory move
func (s State) PathEncoded() bool {
	switch s {
	case StateReview, StateLocked, StateApproved, StateConcerns:
		return true
	}
	return false
}

// Terminal reports whether the state ends the active review cycle
func (s State) Terminal() bool {
	return s == StateApproved || s == StateConcerns
}

// stateForDir recovers the state implied by a directory segment,
// case-insensitively. Unknown segments yield StateUnknown.
func stateForDir(dir string) State {
	for state, name := range stateDirs {
		if strings.EqualFold(dir, name) {
			return state
		}
	}
	return StateUnknown
}
