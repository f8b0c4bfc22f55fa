package audit

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"codereview/internal/common"
	"codereview/internal/gitrepo"
	"codereview/pkg/errors"
	"codereview/pkg/models"
)

// Engine validates and executes state transitions. A transition is a file
// move inside the audit tree committed with a structured message and pushed:
// the directory path is the state, the commit is the audit entry, the push
// is the publication point.
//
// Every mutation follows reset, verify, move, commit, push. The reset pulls
// the latest remote state; the verify step fails explicitly when the record
// moved underneath a stale caller, which is how racing reviewers lose.
type Engine struct {
	audit    *gitrepo.Handle
	reader   *Reader
	reviewer models.User
	now      func() time.Time
}

// SelectionItem pairs a candidate source commit with its rendered patch
type SelectionItem struct {
	Commit models.SourceCommit
	Patch  string
}

// NewEngine creates a transition engine acting as the given reviewer
func NewEngine(audit *gitrepo.Handle, reviewer models.User) *Engine {
	return &Engine{
		audit:    audit,
		reader:   NewReader(audit),
		reviewer: reviewer,
		now:      time.Now,
	}
}

// Reader exposes the engine's history reader
func (e *Engine) Reader() *Reader { return e.reader }

// Records enumerates every record at the current head, recovering the
// profile and review path of locked ones from their locking commits
func (e *Engine) Records() ([]*CommitRecord, error) {
	records, err := List(e.audit)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.State == StateLocked {
			if err := e.hydrateLocked(rec); err != nil {
				return nil, err
			}
		}
	}
	return records, nil
}

// LockUser is the per-user lock directory name, the local part of the
// reviewer's email address
func (e *Engine) LockUser() string {
	if at := strings.IndexByte(e.reviewer.Email, '@'); at > 0 {
		return e.reviewer.Email[:at]
	}
	return e.reviewer.Email
}

// ChangeState moves a record to a new lifecycle state. Redundant calls are
// no-ops; unknown or non-path states are rejected. The caller supplies
// reason codes and commentary through details; the KeyMessage entry becomes
// the commit's free text.
func (e *Engine) ChangeState(rec *CommitRecord, to State, details Details) error {
	if rec.State == to {
		return nil
	}
	if !to.PathEncoded() {
		return errors.New(errors.ErrCodeInvalidState,
			fmt.Sprintf("cannot transition to %q: not a lifecycle state", to)).
			WithSuggestions("Use the comment and resign operations for annotations")
	}

	if err := e.audit.Reset(); err != nil {
		return err
	}
	if err := e.verifyPresent(rec); err != nil {
		return err
	}
	if err := e.hydrateLocked(rec); err != nil {
		return err
	}

	target, err := e.targetPath(rec, to)
	if err != nil {
		return err
	}

	d := e.baseDetails(rec, details)
	d[KeyState] = string(to)
	d[KeyStatePrevious] = string(rec.State)
	if to == StateLocked {
		d[KeyLockedBy] = e.LockUser()
	}

	if target != rec.CurrentPath {
		if err := e.move(rec.CurrentPath, target); err != nil {
			return err
		}
	}
	if err := e.commitAndPush(d); err != nil {
		return err
	}

	rec.State = to
	rec.CurrentPath = target
	if to == StateLocked {
		rec.LockedBy = e.LockUser()
	} else {
		rec.LockedBy = ""
	}
	return nil
}

// ChangeProfile moves a record into another profile namespace, splicing the
// profile segment instead of the state segment
func (e *Engine) ChangeProfile(rec *CommitRecord, newProfile string, details Details) error {
	if rec.Profile == newProfile {
		return nil
	}
	if rec.State == StateLocked {
		return errors.New(errors.ErrCodeInvalidState,
			"cannot change the profile of a locked record").
			WithSuggestions("Unlock the record first")
	}

	if err := e.audit.Reset(); err != nil {
		return err
	}
	if err := e.verifyPresent(rec); err != nil {
		return err
	}

	sp, ok := ParsePath(rec.CurrentPath)
	if !ok {
		return errors.New(errors.ErrCodeInternal, "record path no longer parses: "+rec.CurrentPath)
	}
	oldProfile := sp.Profile
	sp.Profile = newProfile
	target := sp.Path()

	d := e.baseDetails(rec, details)
	d[KeyState] = string(rec.State)
	d[KeyProfile] = newProfile
	d[KeyProfilePrevious] = oldProfile

	if err := e.move(rec.CurrentPath, target); err != nil {
		return err
	}
	if err := e.commitAndPush(d); err != nil {
		return err
	}

	rec.Profile = newProfile
	rec.CurrentPath = target
	rec.ReviewPath = sp.ReviewPath()
	return nil
}

// Lock claims a record for the acting reviewer
func (e *Engine) Lock(rec *CommitRecord, details Details) error {
	return e.ChangeState(rec, StateLocked, details)
}

// Unlock returns a locked record to its canonical review path
func (e *Engine) Unlock(rec *CommitRecord, details Details) error {
	return e.ChangeState(rec, StateReview, details)
}

// Comment records an annotation without moving the record: a comment file
// beside the record plus one audit entry
func (e *Engine) Comment(rec *CommitRecord, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New(errors.ErrCodeRequiredField, "comment text is required")
	}

	if err := e.audit.Reset(); err != nil {
		return err
	}
	if err := e.verifyPresent(rec); err != nil {
		return err
	}
	if err := e.hydrateLocked(rec); err != nil {
		return err
	}

	commentPath := CommentPath(rec.Profile, rec.SelectDate, rec.SHA1, e.now(), e.reviewer.Email)
	if err := e.writeWorktreeFile(commentPath, text); err != nil {
		return err
	}
	if err := e.stage(commentPath); err != nil {
		return err
	}

	d := e.baseDetails(rec, Details{KeyMessage: text})
	d[KeyState] = string(StateComment)
	return e.commitAndPush(d)
}

// Resign records the reviewer's declination in the per-user resignation
// list. The record stays where it is; only the picklist consults the list.
func (e *Engine) Resign(rec *CommitRecord, details Details) error {
	if err := e.audit.Reset(); err != nil {
		return err
	}
	if err := e.verifyPresent(rec); err != nil {
		return err
	}

	listPath := ResignedPath(e.LockUser())
	existing, _ := e.audit.ReadFile(listPath)
	for _, line := range strings.Split(existing, "\n") {
		if strings.TrimSpace(line) == rec.Base {
			return nil
		}
	}

	content := existing
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += rec.Base + "\n"

	if err := e.writeWorktreeFile(listPath, content); err != nil {
		return err
	}
	if err := e.stage(listPath); err != nil {
		return err
	}

	d := e.baseDetails(rec, details)
	d[KeyState] = string(StateResigned)
	d[KeyStatePrevious] = string(rec.State)
	return e.commitAndPush(d)
}

// AddRecords writes newly selected source commits as review-state records.
// Each record's creation is its own audit commit; the batch publishes with
// one push at the end. Commits already tracked anywhere in the tree are
// skipped. Returns how many records were added.
func (e *Engine) AddRecords(profile string, items []SelectionItem) (int, error) {
	if err := e.audit.Reset(); err != nil {
		return 0, err
	}

	tracked, err := e.trackedCommits()
	if err != nil {
		return 0, err
	}

	selected := e.now()
	added := 0
	for _, item := range items {
		if tracked[item.Commit.Hash] {
			continue
		}

		reviewPath := ReviewPathFor(profile, selected, item.Commit.Hash)
		if err := e.writeWorktreeFile(reviewPath, item.Patch); err != nil {
			return added, err
		}
		if err := e.stage(reviewPath); err != nil {
			return added, err
		}

		sp, _ := ParsePath(reviewPath)
		d := Details{
			KeyState:      string(StateReview),
			KeyProfile:    profile,
			KeyCommit:     item.Commit.Hash,
			KeyCommitDate: item.Commit.Date.Format("2006-01-02"),
			KeySelectDate: sp.SelectDate(),
			KeyReviewer:   e.reviewer.Email,
		}
		message, err := EncodeMessage(item.Commit.Subject, d)
		if err != nil {
			return added, err
		}
		if _, err := e.audit.Commit(message, e.reviewer.Name, e.reviewer.Email); err != nil {
			return added, err
		}
		added++
	}

	if added == 0 {
		return 0, nil
	}
	return added, e.audit.Push()
}

// AdminCommit commits housekeeping changes (profile provisioning, source
// pointer bumps) marked skip so reporting ignores them
func (e *Engine) AdminCommit(relPaths []string, freeText string, details Details) error {
	for _, p := range relPaths {
		if err := e.stage(p); err != nil {
			return err
		}
	}

	if details == nil {
		details = Details{}
	}
	d := details.Clone()
	d[KeySkip] = "true"
	d[KeyReviewer] = e.reviewer.Email

	message, err := EncodeMessage(freeText, d)
	if err != nil {
		return err
	}
	if _, err := e.audit.Commit(message, e.reviewer.Name, e.reviewer.Email); err != nil {
		return err
	}
	return e.audit.Push()
}

// baseDetails merges caller-supplied details over the canonical transition
// keys. The KeyMessage entry is separated out as commit free text later.
func (e *Engine) baseDetails(rec *CommitRecord, details Details) Details {
	d := Details{
		KeyCommit:   rec.SHA1,
		KeyProfile:  rec.Profile,
		KeyReviewer: e.reviewer.Email,
	}
	if rec.Date != "" {
		d[KeyCommitDate] = rec.Date
	}
	if rec.SelectDate != "" {
		d[KeySelectDate] = rec.SelectDate
	}
	for k, v := range details {
		if v != "" {
			d[k] = v
		}
	}
	return d
}

func (e *Engine) commitAndPush(details Details) error {
	d := details.Clone()
	freeText := d[KeyMessage]
	delete(d, KeyMessage)

	message, err := EncodeMessage(freeText, d)
	if err != nil {
		return err
	}
	if _, err := e.audit.Commit(message, e.reviewer.Name, e.reviewer.Email); err != nil {
		return err
	}
	return e.audit.Push()
}

// verifyPresent recomputes repository state immediately prior to acting: a
// record whose path vanished after reset was moved by another writer
func (e *Engine) verifyPresent(rec *CommitRecord) error {
	files, err := e.audit.ListFiles()
	if err != nil {
		return err
	}
	for _, f := range files {
		if f == rec.CurrentPath {
			return nil
		}
	}
	return errors.ConcurrencyError(
		fmt.Sprintf("record %s is no longer at %s", shortSHA(rec.SHA1), rec.CurrentPath), nil).
		WithContext("commit", rec.SHA1)
}

// hydrateLocked recovers the profile and select date of a record parked
// under Locked/, where the path carries neither, from the locking commit's
// structured data
func (e *Engine) hydrateLocked(rec *CommitRecord) error {
	if rec.State != StateLocked || rec.Profile != "" {
		return nil
	}

	entries, err := e.reader.History(Filter{Commit: rec.SHA1, IncludeSkipped: true})
	if err != nil {
		return err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		fields := entries[i].Fields
		if State(fields[KeyState]) != StateLocked {
			continue
		}
		rec.Profile = fields[KeyProfile]
		rec.SelectDate = fields[KeySelectDate]
		reviewPath, err := ReviewPathFromSelectDate(rec.Profile, rec.SelectDate, rec.SHA1)
		if err != nil {
			return err
		}
		rec.ReviewPath = reviewPath
		return nil
	}
	return errors.New(errors.ErrCodeResultParsing,
		fmt.Sprintf("no locking entry found for %s; cannot recover its profile", shortSHA(rec.SHA1)))
}

// shortSHA abbreviates a commit identifier for messages; identifiers
// shorter than the abbreviation come back whole
func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}

func (e *Engine) targetPath(rec *CommitRecord, to State) (string, error) {
	if to == StateLocked {
		return path.Join(LockedRoot, e.LockUser(), rec.Base), nil
	}
	sp, ok := ParsePath(rec.ReviewPath)
	if !ok {
		return "", errors.New(errors.ErrCodeInternal,
			"record has no parseable review path: "+rec.ReviewPath)
	}
	return sp.For(to, "")
}

func (e *Engine) move(from, to string) error {
	wt, err := e.audit.Worktree()
	if err != nil {
		return err
	}
	if dir := path.Dir(to); dir != "." {
		if err := wt.Filesystem.MkdirAll(dir, common.DirPermissionNormal); err != nil {
			return errors.GitError("failed to create target directory", err)
		}
	}
	if _, err := wt.Move(from, to); err != nil {
		return errors.ConcurrencyError(
			fmt.Sprintf("failed to move %s to %s", from, to), err)
	}
	return nil
}

func (e *Engine) writeWorktreeFile(relPath, content string) error {
	fullPath := filepath.Join(e.audit.Path(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), common.DirPermissionNormal); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create directory for "+relPath)
	}
	if err := os.WriteFile(fullPath, []byte(content), common.FilePermissionNormal); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write "+relPath)
	}
	return nil
}

func (e *Engine) stage(relPath string) error {
	wt, err := e.audit.Worktree()
	if err != nil {
		return err
	}
	if _, err := wt.Add(relPath); err != nil {
		return errors.GitError("failed to stage "+relPath, err)
	}
	return nil
}

// trackedCommits collects the sha1 of every record anywhere in the tree
func (e *Engine) trackedCommits() (map[string]bool, error) {
	files, err := e.audit.ListFiles()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, f := range files {
		if sp, ok := ParsePath(f); ok {
			set[sp.SHA1()] = true
		}
	}
	return set, nil
}
