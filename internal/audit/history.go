package audit

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"codereview/internal/gitrepo"
	"codereview/pkg/errors"
)

// LogEntry is one commit in the audit repository's history: who made it,
// when, the free-text commentary, and the decoded structured record.
type LogEntry struct {
	CommitHash  string
	AuthorEmail string
	Timestamp   time.Time
	FreeText    string
	Fields      Details
}

// Skip reports whether the entry is administrative housekeeping
func (e LogEntry) Skip() bool {
	return e.Fields.Skip()
}

// Filter narrows a history traversal. Commit matches the structured commit
// key by prefix, which also serves the partial-hash lookups reporting does.
type Filter struct {
	Commit         string
	Profile        string
	Since          *time.Time
	Until          *time.Time
	IncludeSkipped bool
}

// Reader replays the audit repository's commit log to reconstruct record
// history. Malformed entries are logged and skipped; they never abort the
// traversal.
type Reader struct {
	audit *gitrepo.Handle
	warnf func(format string, args ...interface{})
}

// NewReader creates a history reader over the audit repository
func NewReader(audit *gitrepo.Handle) *Reader {
	return &Reader{
		audit: audit,
		warnf: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}
}

// History returns matching audit entries in chronological order
func (r *Reader) History(filter Filter) ([]LogEntry, error) {
	head := r.audit.Head()
	if head.IsZero() {
		return nil, nil
	}

	iter, err := r.audit.Repo().Log(&git.LogOptions{
		From:  head,
		Since: filter.Since,
		Until: filter.Until,
	})
	if err != nil {
		return nil, errors.GitError("failed to open audit log", err)
	}
	defer iter.Close()

	var entries []LogEntry
	err = iter.ForEach(func(c *object.Commit) error {
		freeText, fields, decodeErr := DecodeMessage(c.Message)
		if decodeErr != nil {
			r.warnf("skipping unparseable audit entry %s: %v", c.Hash.String()[:8], decodeErr)
			return nil
		}

		entry := LogEntry{
			CommitHash:  c.Hash.String(),
			AuthorEmail: c.Author.Email,
			Timestamp:   c.Author.When,
			FreeText:    freeText,
			Fields:      fields,
		}
		if !matches(entry, filter) {
			return nil
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, errors.GitError("failed to traverse audit log", err)
	}

	// Log iteration walks newest-first; replay order is oldest-first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// ConcernReviewer scans the history for the reviewer of record on an open
// concern: the author of the most recent concerns entry for the commit,
// unless a later approval superseded it.
func (r *Reader) ConcernReviewer(sha1 string) (string, bool, error) {
	entries, err := r.History(Filter{Commit: sha1})
	if err != nil {
		return "", false, err
	}

	reviewer := ""
	for _, e := range entries {
		switch State(e.Fields[KeyState]) {
		case StateConcerns:
			reviewer = e.AuthorEmail
		case StateApproved:
			reviewer = ""
		}
	}
	return reviewer, reviewer != "", nil
}

func matches(entry LogEntry, filter Filter) bool {
	if !filter.IncludeSkipped && entry.Skip() {
		return false
	}
	if filter.Commit != "" {
		if !strings.HasPrefix(entry.Fields[KeyCommit], filter.Commit) {
			return false
		}
	}
	if filter.Profile != "" && entry.Fields[KeyProfile] != filter.Profile {
		return false
	}
	return true
}
