package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codereview/pkg/models"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("CODE_REVIEW_CONFIG", configFile)

	cfg := &models.Config{Profile: "payments"}
	cfg.Audit.Path = "/srv/audit"
	cfg.Audit.Branch = "master"
	cfg.Source.URL = "git@example.com:acme/app.git"
	cfg.User = models.User{Name: "Alice", Email: "alice@example.com"}

	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingConfig(t *testing.T) {
	t.Setenv("CODE_REVIEW_CONFIG", filepath.Join(t.TempDir(), "nope", "config.yaml"))

	cfg, err := Load()
	require.NoError(t, err, "a missing config file is not an error")
	assert.Equal(t, &models.Config{}, cfg)
	assert.False(t, Exists())
}

func TestLoadMalformedConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("CODE_REVIEW_CONFIG", configFile)
	require.NoError(t, os.WriteFile(configFile, []byte("\t: ["), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestSavePermissions(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("CODE_REVIEW_CONFIG", configFile)

	require.NoError(t, Save(&models.Config{}))

	info, err := os.Stat(configFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(),
		"config may hold identity details and stays user-only")
}
