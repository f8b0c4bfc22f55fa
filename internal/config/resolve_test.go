package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codereview/internal/gitrepo"
	"codereview/internal/testutil"
	"codereview/pkg/models"
)

func openTestHandle(t *testing.T) *gitrepo.Handle {
	t.Helper()
	f := testutil.NewFixture(t)
	handle, err := gitrepo.Open(f.Clone(), "origin", "master")
	require.NoError(t, err)
	return handle
}

func TestResolveUserFromToolConfig(t *testing.T) {
	handle := openTestHandle(t)

	cfg := &models.Config{User: models.User{Name: "Alice", Email: "alice@example.com"}}
	user, err := ResolveUser(cfg, handle)
	require.NoError(t, err)
	assert.Equal(t, cfg.User, user)

	// a bare email gets used as the display name too
	cfg = &models.Config{User: models.User{Email: "alice@example.com"}}
	user, err = ResolveUser(cfg, handle)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Name)
}

func TestResolveUserFromGitIdentity(t *testing.T) {
	handle := openTestHandle(t)

	cfg, err := handle.Repo().Config()
	require.NoError(t, err)
	cfg.User.Name = "Git Alice"
	cfg.User.Email = "git-alice@example.com"
	require.NoError(t, handle.Repo().SetConfig(cfg))

	user, err := ResolveUser(&models.Config{}, handle)
	require.NoError(t, err)
	assert.Equal(t, "Git Alice", user.Name)
	assert.Equal(t, "git-alice@example.com", user.Email)
}

func TestResolveProfilePrecedence(t *testing.T) {
	handle := openTestHandle(t)

	assert.Equal(t, "flagged", ResolveProfile("flagged", &models.Config{Profile: "cfg"}, handle))
	assert.Equal(t, "cfg", ResolveProfile("", &models.Config{Profile: "cfg"}, handle))
	assert.Equal(t, "default", ResolveProfile("", &models.Config{}, handle))

	cfg, err := handle.Repo().Config()
	require.NoError(t, err)
	cfg.Raw.Section(gitConfigSection).SetOption("profile", "from-git")
	require.NoError(t, handle.Repo().SetConfig(cfg))

	assert.Equal(t, "from-git", ResolveProfile("", &models.Config{Profile: "cfg"}, handle),
		"repository git config outranks the tool config")
}
