package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "codereview/pkg/errors"
)

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2024, got.Year())

	got, err = parseDateFlag("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDateFlag("march 15")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.GetErrorCode(err))
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "aaa111bb", shortHash("aaa111bbb222ccc333"))
	assert.Equal(t, "abc", shortHash("abc"))
}

func TestScaffoldAudit(t *testing.T) {
	dir := t.TempDir()

	staged, err := scaffoldAudit(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		".gitignore",
		".code-review/profiles/default/selection.yaml",
	}, staged)

	content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "/source/\n", string(content))

	// rerunning leaves existing files untouched and stages nothing
	staged, err = scaffoldAudit(dir)
	require.NoError(t, err)
	assert.Empty(t, staged)
}
