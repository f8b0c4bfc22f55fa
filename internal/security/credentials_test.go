package security

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileBackedManager forces the encrypted-file fallback so tests never
// touch the system keyring
func fileBackedManager(t *testing.T) *CredentialManager {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cm := &CredentialManager{useKeyring: false}
	key, err := cm.getMasterKey()
	require.NoError(t, err)
	cm.masterKey = key
	return cm
}

func TestStoreGetRoundTrip(t *testing.T) {
	cm := fileBackedManager(t)

	require.NoError(t, cm.Store("smtp-password", "s3cret"))
	value, err := cm.Get("smtp-password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)
}

func TestStoredValueIsEncryptedOnDisk(t *testing.T) {
	cm := fileBackedManager(t)
	require.NoError(t, cm.Store("smtp-password", "s3cret"))

	data, err := os.ReadFile(cm.credentialPath("smtp-password"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "s3cret")

	var cred Credential
	require.NoError(t, json.Unmarshal(data, &cred))
	assert.True(t, cred.Encrypted)

	info, err := os.Stat(cm.credentialPath("smtp-password"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestListAndDelete(t *testing.T) {
	cm := fileBackedManager(t)

	names, err := cm.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, cm.Store("smtp-password", "a"))
	require.NoError(t, cm.Store("jira-token", "b"))

	names, err = cm.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"smtp-password", "jira-token"}, names)

	require.NoError(t, cm.Delete("smtp-password"))
	_, err = cm.Get("smtp-password")
	assert.Error(t, err)
}

func TestGetMissingCredential(t *testing.T) {
	cm := fileBackedManager(t)
	_, err := cm.Get("never-stored")
	assert.Error(t, err)
}

func TestMasterKeyIsStable(t *testing.T) {
	cm := fileBackedManager(t)
	require.NoError(t, cm.Store("smtp-password", "s3cret"))

	// a second manager over the same home reuses the persisted key
	again := &CredentialManager{useKeyring: false}
	key, err := again.getMasterKey()
	require.NoError(t, err)
	again.masterKey = key

	value, err := again.Get("smtp-password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)
}

func TestDecryptRejectsTamperedCiphertext(t *testing.T) {
	cm := fileBackedManager(t)
	require.NoError(t, cm.Store("smtp-password", "s3cret"))

	path := cm.credentialPath("smtp-password")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cred Credential
	require.NoError(t, json.Unmarshal(data, &cred))
	cred.Value = "AAAA" + cred.Value[4:]
	tampered, err := json.Marshal(&cred)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Clean(path), tampered, 0o600))

	_, err = cm.Get("smtp-password")
	assert.Error(t, err)
}
