package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"codereview/internal/common"
)

// Author is the signature test commits are made under
var Author = object.Signature{
	Name:  "Test Reviewer",
	Email: "reviewer@example.com",
}

// Fixture is a bare "remote" repository plus helpers to clone and seed it.
// It mirrors the production topology: a shared remote that every clone
// pushes to, which is what the compare-and-swap push logic races against.
type Fixture struct {
	t          *testing.T
	RemotePath string
	clock      time.Time
}

// NewFixture creates a bare remote seeded with one initial commit on
// master, pushed from a throwaway work tree
func NewFixture(t *testing.T) *Fixture {
	t.Helper()

	remote := filepath.Join(t.TempDir(), "remote.git")
	if _, err := git.PlainInit(remote, true); err != nil {
		t.Fatalf("init bare remote: %v", err)
	}

	f := &Fixture{
		t:          t,
		RemotePath: remote,
		clock:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	seed := filepath.Join(t.TempDir(), "seed")
	repo, err := git.PlainInit(seed, false)
	if err != nil {
		t.Fatalf("init seed worktree: %v", err)
	}
	_, err = repo.CreateRemote(&gitcfg.RemoteConfig{
		Name: "origin",
		URLs: []string{remote},
	})
	if err != nil {
		t.Fatalf("wire seed remote: %v", err)
	}
	f.commitIn(seed, map[string]string{".gitignore": "/source/\n"}, "Initial commit", Author)
	f.pushIn(seed)
	return f
}

// Clone checks out a fresh working copy of the remote
func (f *Fixture) Clone() string {
	f.t.Helper()
	dir := filepath.Join(f.t.TempDir(), "clone")
	_, err := git.PlainClone(dir, false, &git.CloneOptions{URL: f.RemotePath})
	if err != nil {
		f.t.Fatalf("clone fixture remote: %v", err)
	}
	return dir
}

// Commit writes files into the clone's worktree and commits them as the
// default author, returning the commit hash
func (f *Fixture) Commit(dir string, files map[string]string, message string) string {
	f.t.Helper()
	return f.commitIn(dir, files, message, Author)
}

// CommitAs is Commit with an explicit author
func (f *Fixture) CommitAs(dir string, files map[string]string, message string, author object.Signature) string {
	f.t.Helper()
	return f.commitIn(dir, files, message, author)
}

// Push publishes the clone's master branch to the remote
func (f *Fixture) Push(dir string) {
	f.t.Helper()
	f.pushIn(dir)
}

// Pull fast-forwards the clone from the remote
func (f *Fixture) Pull(dir string) {
	f.t.Helper()
	repo, err := git.PlainOpen(dir)
	if err != nil {
		f.t.Fatalf("open clone: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		f.t.Fatalf("open worktree: %v", err)
	}
	err = wt.Pull(&git.PullOptions{RemoteName: "origin"})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		f.t.Fatalf("pull clone: %v", err)
	}
}

// Head returns the clone's current head hash
func (f *Fixture) Head(dir string) string {
	f.t.Helper()
	repo, err := git.PlainOpen(dir)
	if err != nil {
		f.t.Fatalf("open clone: %v", err)
	}
	ref, err := repo.Head()
	if err != nil {
		f.t.Fatalf("read head: %v", err)
	}
	return ref.Hash().String()
}

// HeadMessage returns the clone's head commit message
func (f *Fixture) HeadMessage(dir string) string {
	f.t.Helper()
	repo, err := git.PlainOpen(dir)
	if err != nil {
		f.t.Fatalf("open clone: %v", err)
	}
	ref, err := repo.Head()
	if err != nil {
		f.t.Fatalf("read head: %v", err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		f.t.Fatalf("read head commit: %v", err)
	}
	return commit.Message
}

// tick advances the fixture clock so commit timestamps stay ordered
func (f *Fixture) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *Fixture) commitIn(dir string, files map[string]string, message string, author object.Signature) string {
	f.t.Helper()

	repo, err := git.PlainOpen(dir)
	if err != nil {
		f.t.Fatalf("open repo %s: %v", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		f.t.Fatalf("open worktree: %v", err)
	}

	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), common.DirPermissionNormal); err != nil {
			f.t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), common.FilePermissionNormal); err != nil {
			f.t.Fatalf("write %s: %v", rel, err)
		}
		if _, err := wt.Add(rel); err != nil {
			f.t.Fatalf("stage %s: %v", rel, err)
		}
	}

	sig := author
	sig.When = f.tick()
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            &sig,
		AllowEmptyCommits: true,
	})
	if err != nil {
		f.t.Fatalf("commit: %v", err)
	}
	return hash.String()
}

func (f *Fixture) pushIn(dir string) {
	f.t.Helper()

	repo, err := git.PlainOpen(dir)
	if err != nil {
		f.t.Fatalf("open repo %s: %v", dir, err)
	}
	err = repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs: []gitcfg.RefSpec{
			gitcfg.RefSpec("refs/heads/master:refs/heads/master"),
		},
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		f.t.Fatalf("push %s: %v", dir, err)
	}
}

// ForceBranch moves the remote's master to the given hash without going
// through a clone, for manufacturing non-fast-forward scenarios
func (f *Fixture) ForceBranch(hash string) {
	f.t.Helper()

	repo, err := git.PlainOpen(f.RemotePath)
	if err != nil {
		f.t.Fatalf("open remote: %v", err)
	}
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName("master"), plumbing.NewHash(hash))
	if err := repo.Storer.SetReference(ref); err != nil {
		f.t.Fatalf("move remote branch: %v", err)
	}
}
