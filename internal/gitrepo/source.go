package gitrepo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"gopkg.in/yaml.v3"

	"codereview/internal/common"
	"codereview/pkg/errors"
	"codereview/pkg/models"
)

// SourcePinPath is where the audit repository records which source commit
// the source/ sub-checkout tracks. The checkout itself is git-ignored; the
// pin file is the committed pointer, so pointer bumps stay audited commits.
const SourcePinPath = ".code-review/source.yaml"

// SyncSource brings the source sub-checkout up to the remote head of the
// pinned branch. Returns the refreshed pin and whether content moved; when
// it moved the caller commits the pointer bump into the audit repository.
func (m *Manager) SyncSource() (*models.SourcePin, bool, error) {
	audit, err := m.Open(KindAudit)
	if err != nil {
		return nil, false, err
	}

	pin, err := m.ReadSourcePin(audit)
	if err != nil {
		return nil, false, err
	}

	localPath := m.SourcePath()
	if err := cloneOrFetch(pin.URL, localPath); err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeRepoSyncFailed,
			fmt.Sprintf("failed to sync source checkout from %s", pin.URL))
	}

	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return nil, false, errors.GitError("failed to open source checkout", err)
	}

	ref, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", pin.Branch), true)
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeRepoSyncFailed,
			fmt.Sprintf("source branch %q not found on origin", pin.Branch))
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, false, errors.GitError("failed to get source worktree", err)
	}
	err = wt.Checkout(&git.CheckoutOptions{Hash: ref.Hash(), Force: true})
	if err != nil {
		return nil, false, errors.GitError("failed to check out source head", err)
	}

	moved := pin.Commit != ref.Hash().String()
	pin.Commit = ref.Hash().String()
	return pin, moved, nil
}

// ReadSourcePin loads the committed source pointer from the audit head tree
func (m *Manager) ReadSourcePin(audit *Handle) (*models.SourcePin, error) {
	content, err := audit.ReadFile(SourcePinPath)
	if err != nil {
		return nil, errors.New(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("audit repository has no %s", SourcePinPath)).
			WithSuggestions("Run 'codereview init --source-url <url>' to pin the source repository")
	}

	var pin models.SourcePin
	if err := yaml.Unmarshal([]byte(content), &pin); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid,
			fmt.Sprintf("malformed %s", SourcePinPath))
	}
	if pin.URL == "" {
		return nil, errors.ConfigError("source pin has no url", "url")
	}
	if pin.Branch == "" {
		pin.Branch = "master"
	}
	return &pin, nil
}

// WriteSourcePin writes the pin into the audit working tree; the caller
// stages and commits it
func (m *Manager) WriteSourcePin(pin *models.SourcePin) error {
	data, err := yaml.Marshal(pin)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal source pin")
	}

	fullPath := filepath.Join(m.config.Audit.Path, filepath.FromSlash(SourcePinPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), common.DirPermissionNormal); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create .code-review directory")
	}
	if err := os.WriteFile(fullPath, data, common.FilePermissionNormal); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write source pin")
	}
	return nil
}

// cloneOrFetch clones a repository or fetches updates if it already exists
func cloneOrFetch(gitURL, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), common.DirPermissionNormal); err != nil {
		return fmt.Errorf("failed to create checkout directory: %w", err)
	}

	if _, err := os.Stat(filepath.Join(localPath, ".git")); err == nil {
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing checkout: %w", err)
		}

		remote, err := repo.Remote("origin")
		if err != nil {
			return fmt.Errorf("failed to get remote: %w", err)
		}

		err = remote.Fetch(&git.FetchOptions{Auth: getAuthMethod(gitURL)})
		if err != nil && err != git.NoErrAlreadyUpToDate {
			return fmt.Errorf("failed to fetch updates: %w", err)
		}
		return nil
	}

	_, err := git.PlainClone(localPath, false, &git.CloneOptions{
		URL:  gitURL,
		Auth: getAuthMethod(gitURL),
	})
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}
	return nil
}
