package notify

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
		return "", assert.AnError
	}
	return content, nil
}

func sampleDigest() Digest {
	return Digest{
		Profile: "payments",
		State:   "concerns",
		Date:    "2024-03-15",
		Records: []DigestRecord{
			{
				SHA1:     "aaa111bbb222",
				ShortSHA: "aaa111bb",
				Author:   "alice@example.com",
				Date:     "2024-02-20",
				Reviewer: "reviewer@example.com",
				Reason:   "incorrect behavior",
				Message:  "misses the negative case",
			},
		},
	}
}

func TestRenderBuiltinConcerns(t *testing.T) {
	renderer := NewRenderer(fakeTree{})

	msg, err := renderer.Render("concerns", sampleDigest())
	require.NoError(t, err)
	assert.Equal(t, "[code-review] 1 commit(s) with concerns in payments", msg.Subject)
	assert.Contains(t, msg.Body, "aaa111bb")
	assert.Contains(t, msg.Body, "alice@example.com")
	assert.Contains(t, msg.Body, "incorrect behavior")
	assert.Contains(t, msg.Body, "misses the negative case")
}

func TestRenderBuiltinSelection(t *testing.T) {
	digest := sampleDigest()
	digest.State = "review"

	msg, err := NewRenderer(fakeTree{}).Render("selection", digest)
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "awaiting review in payments")
	assert.Contains(t, msg.Body, "codereview pick")
}

func TestRenderCommittedOverride(t *testing.T) {
	renderer := NewRenderer(fakeTree{
		".code-review/templates/concerns.tmpl": "Custom subject for {{.Profile}}\ncustom body with {{len .Records}} records\n",
	})

	msg, err := renderer.Render("concerns", sampleDigest())
	require.NoError(t, err)
	assert.Equal(t, "Custom subject for payments", msg.Subject)
	assert.Equal(t, "custom body with 1 records\n", msg.Body)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := NewRenderer(fakeTree{}).Render("weekly", sampleDigest())
	assert.Error(t, err)
}

func TestRenderMalformedOverride(t *testing.T) {
	renderer := NewRenderer(fakeTree{
		".code-review/templates/concerns.tmpl": "{{.Unclosed\n",
	})
	_, err := renderer.Render("concerns", sampleDigest())
	assert.Error(t, err)
}
