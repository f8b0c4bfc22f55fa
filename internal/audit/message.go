package audit

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"codereview/pkg/errors"
)

// Sentinel separates free text from the structured block in audit commit
// messages. Everything before the first sentinel line is human commentary;
// everything after decodes as key/value data.
const Sentinel = "---"

// Canonical structured-record keys. Older message variants may carry extra
// keys; the decoder keeps them, consumers read only what they know.
const (
	KeyState           = "state"
	KeyStatePrevious   = "state_previous"
	KeyProfile         = "profile"
	KeyProfilePrevious = "profile_previous"
	KeyCommit          = "commit"
	KeyCommitDate      = "commit_date"
	KeySelectDate      = "select_date"
	KeyReviewer        = "reviewer"
	KeyReason          = "reason"
	KeyMessage         = "message"
	KeyFixedBy         = "fixed_by"
	KeyLockedBy        = "locked_by"
	KeySkip            = "skip"
)

// Details is the structured metadata block of one audit commit
type Details map[string]string

// Skip reports whether the entry is administrative and excluded from
// human-facing summaries
func (d Details) Skip() bool {
	switch strings.ToLower(d[KeySkip]) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// Clone returns a shallow copy
func (d Details) Clone() Details {
	out := make(Details, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// EncodeMessage renders an audit commit message: optional free text, the
// sentinel line, then the structured block as YAML with sorted keys.
func EncodeMessage(freeText string, details Details) (string, error) {
	var b strings.Builder
	if freeText != "" {
		b.WriteString(strings.TrimRight(freeText, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(Sentinel)
	b.WriteString("\n")

	if len(details) > 0 {
		data, err := yaml.Marshal(details)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to encode audit details")
		}
		b.Write(data)
	}
	return b.String(), nil
}

// DecodeMessage splits a commit message on the first sentinel line and
// parses the structured block. A message with no sentinel yields empty
// details; a malformed block is a parse error for this one entry.
func DecodeMessage(message string) (string, Details, error) {
	lines := strings.Split(message, "\n")
	sentinelAt := -1
	for i, line := range lines {
		if strings.TrimRight(line, "\r") == Sentinel {
			sentinelAt = i
			break
		}
	}

	if sentinelAt < 0 {
		return strings.TrimRight(message, "\n"), Details{}, nil
	}

	freeText := strings.TrimRight(strings.Join(lines[:sentinelAt], "\n"), "\n")
	block := strings.Join(lines[sentinelAt+1:], "\n")

	raw := map[string]interface{}{}
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return freeText, nil, errors.Wrap(err, errors.ErrCodeResultParsing,
			"malformed structured block in audit commit message")
	}

	details := make(Details, len(raw))
	for k, v := range raw {
		details[k] = fmt.Sprintf("%v", v)
	}
	return freeText, details, nil
}
