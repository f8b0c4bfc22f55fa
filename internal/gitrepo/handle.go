package gitrepo

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"codereview/pkg/errors"
)

// Handle wraps one working tree. The audit handle is the read-write state
// store; the source handle is the read-mostly sub-checkout under source/.
type Handle struct {
	path      string
	remote    string
	branch    string
	repo      *git.Repository
	baseHead  plumbing.Hash
	originURL string
}

// Open binds a handle to an existing working tree
func Open(path, remote, branch string) (*Handle, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRepoNotFound,
			fmt.Sprintf("failed to open repository at %s", path))
	}

	h := &Handle{
		path:   path,
		remote: remote,
		branch: branch,
		repo:   repo,
	}
	if h.remote == "" {
		h.remote = "origin"
	}
	if h.branch == "" {
		if name, err := currentBranch(repo); err == nil {
			h.branch = name
		} else {
			h.branch = "master"
		}
	}
	return h, nil
}

// Path returns the working tree root
func (h *Handle) Path() string { return h.path }

// Branch returns the tracked branch name
func (h *Handle) Branch() string { return h.branch }

// Repo exposes the underlying go-git repository
func (h *Handle) Repo() *git.Repository { return h.repo }

// Worktree returns the working tree
func (h *Handle) Worktree() (*git.Worktree, error) {
	wt, err := h.repo.Worktree()
	if err != nil {
		return nil, errors.GitError("failed to get worktree", err)
	}
	return wt, nil
}

// Head returns the current local head hash, or the zero hash when the
// repository has no commits yet
func (h *Handle) Head() plumbing.Hash {
	ref, err := h.repo.Head()
	if err != nil {
		return plumbing.ZeroHash
	}
	return ref.Hash()
}

// Reset synchronizes local state with the upstream branch. It is called
// before every mutation and before read-side reporting. A missing remote is
// a fatal configuration error; a dirty working tree aborts rather than
// stashing, since every write this tool performs commits immediately.
func (h *Handle) Reset() error {
	if _, err := h.repo.Remote(h.remote); err != nil {
		return errors.New(errors.ErrCodeRemoteMissing,
			fmt.Sprintf("repository at %s has no %q remote configured", h.path, h.remote)).
			WithSuggestions(
				"The audit repository must track an upstream remote",
				fmt.Sprintf("Add one with: git -C %s remote add %s <url>", h.path, h.remote),
			)
	}

	wt, err := h.Worktree()
	if err != nil {
		return err
	}

	status, err := wt.Status()
	if err != nil {
		return errors.GitError("failed to read worktree status", err)
	}
	if !status.IsClean() {
		return errors.New(errors.ErrCodeRepoDirty,
			fmt.Sprintf("working tree at %s has uncommitted changes", h.path)).
			WithSuggestions(
				"Commit or stash your changes before running review operations",
				"All tool-made changes are committed immediately; a dirty tree means outside edits",
			)
	}

	err = wt.Pull(&git.PullOptions{
		RemoteName:    h.remote,
		ReferenceName: plumbing.NewBranchReferenceName(h.branch),
		Auth:          getAuthMethod(h.originURLOrEmpty()),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate && err != transport.ErrEmptyRemoteRepository {
		if isNonFastForward(err) {
			return errors.ConcurrencyError("local and remote audit histories diverged", err)
		}
		return errors.Wrap(err, errors.ErrCodeRepoSyncFailed,
			fmt.Sprintf("failed to pull %s from %s", h.branch, h.remote))
	}

	h.baseHead = h.Head()
	return nil
}

// Push publishes the current branch. A compare-and-swap guard fails the
// operation explicitly when the remote head advanced past the head the
// current operation was based on; the caller must re-resolve and retry.
func (h *Handle) Push() error {
	err := h.repo.Fetch(&git.FetchOptions{
		RemoteName: h.remote,
		Auth:       getAuthMethod(h.originURLOrEmpty()),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate && err != transport.ErrEmptyRemoteRepository {
		return errors.Wrap(err, errors.ErrCodeRepoSyncFailed, "failed to fetch before push")
	}

	remoteRef, err := h.repo.Reference(plumbing.NewRemoteReferenceName(h.remote, h.branch), true)
	if err == nil && h.baseHead != plumbing.ZeroHash && remoteRef.Hash() != h.baseHead {
		return errors.ConcurrencyError(
			fmt.Sprintf("remote %s/%s advanced past %s", h.remote, h.branch, h.baseHead.String()[:8]),
			nil)
	}

	refSpec := gitcfg.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", h.branch, h.branch))
	err = h.repo.Push(&git.PushOptions{
		RemoteName: h.remote,
		RefSpecs:   []gitcfg.RefSpec{refSpec},
		Auth:       getAuthMethod(h.originURLOrEmpty()),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		if isNonFastForward(err) {
			return errors.ConcurrencyError("push rejected: remote has newer commits", err)
		}
		return errors.GitError(fmt.Sprintf("failed to push %s to %s", h.branch, h.remote), err)
	}

	h.baseHead = h.Head()
	return nil
}

// Commit commits the currently staged changes with the given author
func (h *Handle) Commit(message, name, email string) (plumbing.Hash, error) {
	wt, err := h.Worktree()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  name,
			Email: email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, errors.GitError("failed to commit", err)
	}
	return hash, nil
}

// Origin resolves the configured remote URL; memoized per handle
func (h *Handle) Origin() (string, error) {
	if h.originURL != "" {
		return h.originURL, nil
	}
	remote, err := h.repo.Remote(h.remote)
	if err != nil {
		return "", errors.New(errors.ErrCodeRemoteMissing,
			fmt.Sprintf("no %q remote configured", h.remote))
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", errors.New(errors.ErrCodeRemoteMissing,
			fmt.Sprintf("remote %q has no URL", h.remote))
	}
	h.originURL = urls[0]
	return h.originURL, nil
}

// ListFiles enumerates every path in the head tree, the ls-files-style query
// mechanism underlying record resolution and state listing
func (h *Handle) ListFiles() ([]string, error) {
	tree, err := h.headTree()
	if err != nil {
		return nil, err
	}

	var files []string
	err = tree.Files().ForEach(func(f *object.File) error {
		files = append(files, f.Name)
		return nil
	})
	if err != nil {
		return nil, errors.GitError("failed to iterate head tree", err)
	}
	return files, nil
}

// ReadFile returns the content of a path in the head tree
func (h *Handle) ReadFile(path string) (string, error) {
	tree, err := h.headTree()
	if err != nil {
		return "", err
	}

	file, err := tree.File(path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeObjectUnknown,
			fmt.Sprintf("no such file in audit tree: %s", path))
	}
	return file.Contents()
}

func (h *Handle) headTree() (*object.Tree, error) {
	head, err := h.repo.Head()
	if err != nil {
		return nil, errors.GitError("repository has no commits", err)
	}
	commit, err := h.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, errors.GitError("failed to read head commit", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.GitError("failed to read head tree", err)
	}
	return tree, nil
}

func (h *Handle) originURLOrEmpty() string {
	url, err := h.Origin()
	if err != nil {
		return ""
	}
	return url
}

func currentBranch(repo *git.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not pointing to a branch")
	}
	return head.Name().Short(), nil
}

func isNonFastForward(err error) bool {
	return err != nil && strings.Contains(err.Error(), "non-fast-forward")
}
