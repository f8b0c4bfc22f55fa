package audit

import (
	"strings"

	"codereview/pkg/errors"
)

// Repository is the slice of the repository handle layer the record model
// and read-side consumers need: ls-files-style enumeration plus content
// access at the current head.
type Repository interface {
	ListFiles() ([]string, error)
	ReadFile(path string) (string, error)
}

// CommitRecord represents one source-repository commit under audit. The
// path encodes workflow state; the patch content encodes source provenance.
type CommitRecord struct {
	SHA1        string
	State       State
	Profile     string
	Author      string // email from the patch Author: header
	Date        string // yyyy-mm-dd from the patch Date: header
	SelectDate  string // yyyy-mm from the directory convention
	CurrentPath string
	ReviewPath  string
	Base        string
	LockedBy    string // lock directory owner, set only when locked
}

// Resolve looks up a record by sha1, partial sha1, or path fragment.
// Exactly one match is required: zero matches is an unknown-object error,
// more than one is an ambiguity error listing the candidates.
func Resolve(repo Repository, object string) (*CommitRecord, error) {
	files, err := repo.ListFiles()
	if err != nil {
		return nil, err
	}

	var matches []string
	for _, f := range files {
		if _, ok := ParsePath(f); !ok {
			continue
		}
		if strings.Contains(f, object) {
			matches = append(matches, f)
		}
	}

	switch len(matches) {
	case 0:
		return nil, errors.UnknownObjectError(object)
	case 1:
		return FromPath(repo, matches[0])
	}
	return nil, errors.AmbiguousObjectError(object, matches)
}

// List enumerates every record at the current head, in path order
func List(repo Repository) ([]*CommitRecord, error) {
	files, err := repo.ListFiles()
	if err != nil {
		return nil, err
	}

	var records []*CommitRecord
	for _, f := range files {
		if _, ok := ParsePath(f); !ok {
			continue
		}
		rec, err := FromPath(repo, f)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// FromPath builds a record from its current repository path, deriving state
// and profile from the path and author and date from the patch content.
func FromPath(repo Repository, p string) (*CommitRecord, error) {
	sp, ok := ParsePath(p)
	if !ok {
		return nil, errors.New(errors.ErrCodeObjectUnknown,
			"path is not an audit record: "+p)
	}

	rec := &CommitRecord{
		SHA1:        sp.SHA1(),
		State:       sp.State,
		Profile:     sp.Profile,
		SelectDate:  sp.SelectDate(),
		CurrentPath: p,
		Base:        sp.Base,
	}
	if sp.State == StateLocked {
		// The true profile is not in the path while the record is
		// reparented under Locked/<user>; the transition engine recovers
		// it from the locking commit's structured data.
		rec.LockedBy = sp.User
	} else {
		rec.ReviewPath = sp.ReviewPath()
	}

	content, err := repo.ReadFile(p)
	if err != nil {
		return nil, err
	}
	rec.Author, rec.Date = scanPatchHeaders(content)

	return rec, nil
}

// scanPatchHeaders extracts the author email and authored date from the
// text of a source-control "show" export. Plain line matching, not a
// structured parser: the first Author: and Date: lines win.
func scanPatchHeaders(content string) (author, date string) {
	for _, line := range strings.Split(content, "\n") {
		if author == "" && strings.HasPrefix(line, "Author:") {
			author = parseAuthorEmail(line)
		}
		if date == "" && strings.HasPrefix(line, "Date:") {
			date = parseHeaderDate(line)
		}
		if author != "" && date != "" {
			break
		}
	}
	return author, date
}

func parseAuthorEmail(line string) string {
	open := strings.IndexByte(line, '<')
	close := strings.IndexByte(line, '>')
	if open >= 0 && close > open {
		return line[open+1 : close]
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "Author:"))
}

func parseHeaderDate(line string) string {
	fields := strings.Fields(strings.TrimPrefix(line, "Date:"))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
