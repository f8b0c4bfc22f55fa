package selection

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"codereview/internal/gitrepo"
	"codereview/pkg/errors"
	"codereview/pkg/models"
)

// Options narrows a candidate search over the source log
type Options struct {
	Since *time.Time
	Until *time.Time
	Limit int
}

// Selector searches the source checkout's history for commits matching a
// profile's selection criteria and renders them as patch records
type Selector struct {
	source   *gitrepo.Handle
	criteria *models.SelectionCriteria
}

// New creates a selector for one profile's criteria
func New(source *gitrepo.Handle, criteria *models.SelectionCriteria) *Selector {
	return &Selector{source: source, criteria: criteria}
}

// Candidates walks the source log newest-first and returns commits matching
// any path or author pattern, up to the limit
func (s *Selector) Candidates(opts Options) ([]models.SourceCommit, error) {
	head := s.source.Head()
	if head.IsZero() {
		return nil, errors.New(errors.ErrCodeRepoNotFound, "source checkout has no commits")
	}

	iter, err := s.source.Repo().Log(&git.LogOptions{
		From:  head,
		Since: opts.Since,
		Until: opts.Until,
	})
	if err != nil {
		return nil, errors.GitError("failed to open source log", err)
	}
	defer iter.Close()

	var candidates []models.SourceCommit
	err = iter.ForEach(func(c *object.Commit) error {
		files, err := changedFiles(c)
		if err != nil {
			return err
		}
		if !s.matches(c, files) {
			return nil
		}

		candidates = append(candidates, models.SourceCommit{
			Hash:        c.Hash.String(),
			AuthorName:  c.Author.Name,
			AuthorEmail: c.Author.Email,
			Date:        c.Author.When,
			Subject:     subject(c.Message),
			Files:       files,
		})
		if opts.Limit > 0 && len(candidates) == opts.Limit {
			return storer.ErrStop
		}
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return nil, errors.GitError("failed to walk source log", err)
	}
	return candidates, nil
}

// RenderPatch renders one candidate as the patch record stored in the audit
// tree: a show-style header followed by the unified diff. The Author: and
// Date: header lines are what the record model later scans for provenance.
func (s *Selector) RenderPatch(candidate models.SourceCommit) (string, error) {
	commit, err := s.source.Repo().CommitObject(plumbing.NewHash(candidate.Hash))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeCommitNotFound,
			fmt.Sprintf("source commit %s not found", candidate.Hash[:8]))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", commit.Hash.String())
	fmt.Fprintf(&b, "Author: %s <%s>\n", commit.Author.Name, commit.Author.Email)
	fmt.Fprintf(&b, "Date:   %s\n\n", commit.Author.When.Format("2006-01-02 15:04:05 -0700"))
	for _, line := range strings.Split(strings.TrimRight(commit.Message, "\n"), "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	b.WriteString("\n")

	diffText, err := diff(commit)
	if err != nil {
		return "", err
	}
	b.WriteString(diffText)
	return b.String(), nil
}

// matches applies the criteria as a union: any path pattern hitting any
// changed file, or any author pattern hitting the committer, selects
func (s *Selector) matches(c *object.Commit, files []string) bool {
	for _, pattern := range s.criteria.Path {
		for _, f := range files {
			if matchPath(pattern, f) {
				return true
			}
		}
	}
	for _, pattern := range s.criteria.Author {
		if matchAuthor(pattern, c.Author.Name, c.Author.Email) {
			return true
		}
	}
	return false
}

func matchPath(pattern, file string) bool {
	if pattern == "*" || pattern == "**" {
		return true
	}
	if ok, _ := path.Match(pattern, file); ok {
		return true
	}
	if prefix, found := strings.CutSuffix(pattern, "/**"); found {
		return strings.HasPrefix(file, prefix+"/")
	}
	// A bare filename pattern matches against the basename anywhere
	if !strings.Contains(pattern, "/") {
		if ok, _ := path.Match(pattern, path.Base(file)); ok {
			return true
		}
	}
	return false
}

func matchAuthor(pattern, name, email string) bool {
	pattern = strings.ToLower(pattern)
	if ok, _ := path.Match(pattern, strings.ToLower(email)); ok {
		return true
	}
	full := strings.ToLower(fmt.Sprintf("%s <%s>", name, email))
	if ok, _ := path.Match(pattern, full); ok {
		return true
	}
	return false
}

func changedFiles(c *object.Commit) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}

	if c.NumParents() == 0 {
		var files []string
		err = tree.Files().ForEach(func(f *object.File) error {
			files = append(files, f.Name)
			return nil
		})
		return files, err
	}

	parent, err := c.Parent(0)
	if err != nil {
		return nil, err
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, err
	}
	changes, err := parentTree.Diff(tree)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, change := range changes {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		files = append(files, name)
	}
	return files, nil
}

func diff(c *object.Commit) (string, error) {
	tree, err := c.Tree()
	if err != nil {
		return "", errors.GitError("failed to read commit tree", err)
	}

	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return "", errors.GitError("failed to read parent commit", err)
		}
		parentTree, err = parent.Tree()
		if err != nil {
			return "", errors.GitError("failed to read parent tree", err)
		}
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return "", errors.GitError("failed to diff commit", err)
	}
	patch, err := changes.Patch()
	if err != nil {
		return "", errors.GitError("failed to render patch", err)
	}
	return patch.String(), nil
}

func subject(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return strings.TrimSpace(message[:idx])
	}
	return strings.TrimSpace(message)
}
