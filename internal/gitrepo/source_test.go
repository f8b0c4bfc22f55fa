package gitrepo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codereview/internal/testutil"
	"codereview/pkg/models"
)

func newSyncFixtures(t *testing.T) (*Manager, *testutil.Fixture, *testutil.Fixture, string) {
	t.Helper()

	source := testutil.NewFixture(t)
	srcClone := source.Clone()
	source.Commit(srcClone, map[string]string{"main.go": "package main\n"}, "Seed source")
	source.Push(srcClone)

	audit := testutil.NewFixture(t)
	auditDir := audit.Clone()
	pin := "url: " + source.RemotePath + "\nbranch: master\n"
	audit.Commit(auditDir, map[string]string{SourcePinPath: pin}, "Pin source repository")
	audit.Push(auditDir)

	cfg := &models.Config{}
	cfg.Audit.Path = auditDir
	manager := NewManager(cfg)
	return manager, audit, source, auditDir
}

func TestSyncSource(t *testing.T) {
	manager, audit, source, auditDir := newSyncFixtures(t)

	pin, moved, err := manager.SyncSource()
	require.NoError(t, err)
	assert.True(t, moved, "first sync always moves off the empty pin")
	assert.Equal(t, source.RemotePath, pin.URL)
	assert.NotEmpty(t, pin.Commit)
	assert.DirExists(t, filepath.Join(auditDir, "source", ".git"))

	// commit the bumped pin the way the sync command does
	bumped := "url: " + pin.URL + "\nbranch: master\ncommit: " + pin.Commit + "\n"
	audit.Commit(auditDir, map[string]string{SourcePinPath: bumped}, "Advance source pointer")
	audit.Push(auditDir)

	// no upstream movement, no pointer movement
	_, moved, err = manager.SyncSource()
	require.NoError(t, err)
	assert.False(t, moved)

	// upstream advances; the checkout and pin follow
	srcClone := source.Clone()
	newHead := source.Commit(srcClone, map[string]string{"main.go": "package main // v2\n"}, "Advance source")
	source.Push(srcClone)

	pin, moved, err = manager.SyncSource()
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, newHead, pin.Commit)
}

func TestReadSourcePin(t *testing.T) {
	manager, _, source, _ := newSyncFixtures(t)

	audit, err := manager.Open(KindAudit)
	require.NoError(t, err)

	pin, err := manager.ReadSourcePin(audit)
	require.NoError(t, err)
	assert.Equal(t, source.RemotePath, pin.URL)
	assert.Equal(t, "master", pin.Branch)
}

func TestReadSourcePinMissing(t *testing.T) {
	f := testutil.NewFixture(t)
	cfg := &models.Config{}
	cfg.Audit.Path = f.Clone()
	manager := NewManager(cfg)

	audit, err := manager.Open(KindAudit)
	require.NoError(t, err)

	_, err = manager.ReadSourcePin(audit)
	assert.Error(t, err, "unpinned audit repository cannot sync a source")
}

func TestManagerMemoizesHandles(t *testing.T) {
	f := testutil.NewFixture(t)
	cfg := &models.Config{}
	cfg.Audit.Path = f.Clone()
	manager := NewManager(cfg)

	first, err := manager.Open(KindAudit)
	require.NoError(t, err)
	second, err := manager.Open(KindAudit)
	require.NoError(t, err)
	assert.Same(t, first, second)

	assert.Equal(t, filepath.Join(cfg.Audit.Path, "source"), manager.SourcePath())
}
