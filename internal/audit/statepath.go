package audit

import (
	"fmt"
	"path"
	"strings"
	"time"

	"codereview/pkg/errors"
)

// Reserved top-level names in the audit repository tree. Everything else at
// the top level is a profile namespace.
const (
	LockedRoot   = "Locked"
	ResignedRoot = "Resigned"
	ConfigRoot   = ".code-review"
	SourceRoot   = "source"
	CommentsDir  = "Comments"
)

// PatchSuffix is the record filename extension
const PatchSuffix = ".patch"

// StatePath is the typed codec for the audit tree's directory grammar. The
// grammar is defined here once; nothing else in the tool splices record
// paths by hand.
//
//	<profile>/<yyyy>/<mm>/<StateDir>/<sha1>.patch
//	Locked/<user>/<sha1>.patch
type StatePath struct {
	Profile string
	Year    string
	Month   string
	State   State
	User    string // lock holder, set only when State == locked
	Base    string // <sha1>.patch
}

// ParsePath decodes a repository path. The second return is false when the
// path is not a record (config files, resignation lists, comments, source).
func ParsePath(p string) (*StatePath, bool) {
	segs := strings.Split(path.Clean(p), "/")
	if len(segs) == 0 || !strings.HasSuffix(segs[len(segs)-1], PatchSuffix) {
		return nil, false
	}

	switch segs[0] {
	case LockedRoot:
		if len(segs) != 3 {
			return nil, false
		}
		return &StatePath{
			State: StateLocked,
			User:  segs[1],
			Base:  segs[2],
		}, true
	case ResignedRoot, ConfigRoot, SourceRoot:
		return nil, false
	}

	if len(segs) != 5 {
		return nil, false
	}
	state := stateForDir(segs[3])
	if state == StateUnknown {
		return nil, false
	}
	return &StatePath{
		Profile: segs[0],
		Year:    segs[1],
		Month:   segs[2],
		State:   state,
		Base:    segs[4],
	}, true
}

// SHA1 returns the source commit hash encoded in the record filename
func (sp *StatePath) SHA1() string {
	return strings.TrimSuffix(sp.Base, PatchSuffix)
}

// SelectDate returns the yyyy-mm the record was selected, derived from its
// position in the directory convention. Empty for locked paths.
func (sp *StatePath) SelectDate() string {
	if sp.Year == "" {
		return ""
	}
	return sp.Year + "-" + sp.Month
}

// Path renders the current path encoding
func (sp *StatePath) Path() string {
	if sp.State == StateLocked {
		return path.Join(LockedRoot, sp.User, sp.Base)
	}
	return path.Join(sp.Profile, sp.Year, sp.Month, sp.State.Dir(), sp.Base)
}

// ReviewPath is the canonical path the record returns to when unlocked
func (sp *StatePath) ReviewPath() string {
	return path.Join(sp.Profile, sp.Year, sp.Month, StateReview.Dir(), sp.Base)
}

// For computes the deterministic target path of a state transition. Global
// states splice the state directory into the review path; locked nests the
// record under the per-user lock directory.
func (sp *StatePath) For(state State, user string) (string, error) {
	switch state {
	case StateLocked:
		if user == "" {
			return "", errors.New(errors.ErrCodeInvalidInput, "lock target requires a user")
		}
		return path.Join(LockedRoot, user, sp.Base), nil
	case StateReview, StateApproved, StateConcerns:
		if sp.Profile == "" || sp.Year == "" {
			return "", errors.New(errors.ErrCodeInvalidState,
				fmt.Sprintf("cannot compute %s path without profile and select date", state))
		}
		return path.Join(sp.Profile, sp.Year, sp.Month, state.Dir(), sp.Base), nil
	}
	return "", errors.New(errors.ErrCodeInvalidState,
		fmt.Sprintf("state %q is not path-encoded", state))
}

// ReviewPathFor builds the canonical review path of a newly selected record
func ReviewPathFor(profile string, selected time.Time, sha1 string) string {
	return path.Join(profile,
		fmt.Sprintf("%04d", selected.Year()),
		fmt.Sprintf("%02d", int(selected.Month())),
		StateReview.Dir(),
		sha1+PatchSuffix)
}

// ReviewPathFromSelectDate rebuilds a review path from the yyyy-mm select
// date stored on a locking commit
func ReviewPathFromSelectDate(profile, selectDate, sha1 string) (string, error) {
	parts := strings.SplitN(selectDate, "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", errors.New(errors.ErrCodeResultParsing,
			fmt.Sprintf("malformed select date %q", selectDate))
	}
	return path.Join(profile, parts[0], parts[1], StateReview.Dir(), sha1+PatchSuffix), nil
}

// CommentPath builds the path of one comment annotation file
func CommentPath(profile, selectDate, sha1 string, when time.Time, email string) string {
	parts := strings.SplitN(selectDate, "-", 2)
	year, month := parts[0], ""
	if len(parts) == 2 {
		month = parts[1]
	}
	name := fmt.Sprintf("%s-%s.txt", when.UTC().Format("20060102T150405Z"), email)
	return path.Join(profile, year, month, CommentsDir, sha1, name)
}

// ResignedPath is the per-user resignation list location
func ResignedPath(user string) string {
	return path.Join(ResignedRoot, user)
}
