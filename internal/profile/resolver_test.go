package profile

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "codereview/pkg/errors"
)

type fakeTree map[string]string

func (f fakeTree) ListFiles() ([]string, error) {
	files := make([]string, 0, len(f))
	for p := range f {
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}

func (f fakeTree) ReadFile(path string) (string, error) {
	content, ok := f[path]
	if !ok {
		return "", fmt.Errorf("no such path %s", path)
	}
	return content, nil
}

func TestProfiles(t *testing.T) {
	resolver := NewResolver(fakeTree{
		".code-review/profiles/payments/selection.yaml": "path:\n  - \"billing/**\"\n",
		".code-review/profiles/infra/selection.yaml":    "author:\n  - \"*@ops.example.com\"\n",
		".code-review/profiles/broken/notes.txt":        "not a profile",
		"default/2024/03/Review/abc.patch":              "patch",
	})

	names, err := resolver.Profiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "infra", "payments"}, names)
}

func TestProfilesEmptyTree(t *testing.T) {
	names, err := NewResolver(fakeTree{}).Profiles()
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultProfile}, names,
		"the default profile exists even in an unprovisioned repository")
}

func TestValidate(t *testing.T) {
	resolver := NewResolver(fakeTree{
		".code-review/profiles/payments/selection.yaml": "path:\n  - \"billing/**\"\n",
	})

	assert.NoError(t, resolver.Validate(DefaultProfile))
	assert.NoError(t, resolver.Validate("payments"))

	err := resolver.Validate("nonexistent")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProfileNotFound, apperrors.GetErrorCode(err))
}

func TestCriteria(t *testing.T) {
	resolver := NewResolver(fakeTree{
		".code-review/profiles/payments/selection.yaml": "path:\n  - \"billing/**\"\nauthor:\n  - \"*@pay.example.com\"\n",
		".code-review/profiles/empty/selection.yaml":    "path: []\n",
		".code-review/profiles/broken/selection.yaml":   "\t: [",
	})

	t.Run("provisioned profile", func(t *testing.T) {
		criteria, err := resolver.Criteria("payments")
		require.NoError(t, err)
		assert.Equal(t, []string{"billing/**"}, criteria.Path)
		assert.Equal(t, []string{"*@pay.example.com"}, criteria.Author)
	})

	t.Run("default falls back to match-everything", func(t *testing.T) {
		criteria, err := resolver.Criteria(DefaultProfile)
		require.NoError(t, err)
		assert.Equal(t, []string{"*"}, criteria.Path)
	})

	t.Run("missing non-default profile is fatal", func(t *testing.T) {
		_, err := resolver.Criteria("nonexistent")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeProfileNotFound, apperrors.GetErrorCode(err))
	})

	t.Run("criteria without patterns are rejected", func(t *testing.T) {
		_, err := resolver.Criteria("empty")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeSelectionInvalid, apperrors.GetErrorCode(err))
	})

	t.Run("malformed yaml is rejected", func(t *testing.T) {
		_, err := resolver.Criteria("broken")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeSelectionInvalid, apperrors.GetErrorCode(err))
	})
}

func TestNotification(t *testing.T) {
	resolver := NewResolver(fakeTree{
		".code-review/profiles/payments/notification.config": "template: concerns\nfrom: review@example.com\nto:\n  - team@example.com\nsmtp:\n  host: mail.example.com\n  port: 587\n  username: review\n  credential_key: smtp-password\n",
	})

	cfg, err := resolver.Notification("payments")
	require.NoError(t, err)
	assert.Equal(t, "concerns", cfg.Template)
	assert.Equal(t, []string{"team@example.com"}, cfg.To)
	assert.Equal(t, "mail.example.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "smtp-password", cfg.SMTP.CredentialKey)

	// absent config means delivery is simply unconfigured
	cfg, err = resolver.Notification("default")
	require.NoError(t, err)
	assert.Empty(t, cfg.To)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, ".code-review/profiles/payments/selection.yaml", SelectionPath("payments"))
	assert.Equal(t, ".code-review/profiles/payments/notification.config", NotificationPath("payments"))
}
