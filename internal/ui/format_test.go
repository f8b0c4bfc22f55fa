package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codereview/internal/audit"
)

func TestFormatRecord(t *testing.T) {
	rec := &audit.CommitRecord{
		SHA1:    "aaa111bbb222ccc333",
		Author:  "alice@example.com",
		Date:    "2024-02-20",
		Profile: "payments",
	}
	info := FormatRecord(rec)
	assert.Equal(t, "aaa111bb", info.ShortSHA)
	assert.Equal(t, "aaa111bbb222ccc333", info.SHA1)

	tiny := FormatRecord(&audit.CommitRecord{SHA1: "abc"})
	assert.Equal(t, "abc", tiny.ShortSHA)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []string{"Commit", "State"}, [][]string{
		{"aaa111bb", "review"},
		{"bbb222cc", "approved"},
	})

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "aaa111bb")
	assert.Contains(t, out, "approved")
	assert.Contains(t, out, "COMMIT", "tablewriter upcases headers")
}
