package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"codereview/internal/audit"
	"codereview/pkg/errors"
)

// TemplateRoot is where profiles may override the built-in message
// templates inside the audit repository
const TemplateRoot = ".code-review/templates"

// Message is a rendered notification ready for transport
type Message struct {
	Subject string
	Body    string
}

// Digest is the data a notification template renders: the records in a
// given state for one profile, with their latest audit entry.
type Digest struct {
	Profile string
	State   audit.State
	Date    string
	Records []DigestRecord
}

// DigestRecord is one record line in a digest
type DigestRecord struct {
	SHA1     string
	ShortSHA string
	Author   string
	Date     string
	Reviewer string
	Reason   string
	Message  string
}

// Renderer resolves and executes notification templates. Built-in
// templates cover the standard digests; a profile can override one by
// committing .code-review/templates/<name>.tmpl to the audit repository.
type Renderer struct {
	repo     audit.Repository
	builtins map[string]string
}

// NewRenderer creates a renderer reading overrides from the audit head
func NewRenderer(repo audit.Repository) *Renderer {
	return &Renderer{
		repo: repo,
		builtins: map[string]string{
			"concerns":  concernsTemplate,
			"selection": selectionTemplate,
		},
	}
}

// Render executes the named template over the digest. The first line of
// the output becomes the subject.
func (r *Renderer) Render(name string, digest Digest) (*Message, error) {
	text, err := r.source(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid,
			fmt.Sprintf("notification template %q does not parse", name))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, digest); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid,
			fmt.Sprintf("notification template %q failed to render", name))
	}

	subject, body, found := strings.Cut(buf.String(), "\n")
	if !found {
		body = ""
	}
	return &Message{
		Subject: strings.TrimSpace(subject),
		Body:    strings.TrimLeft(body, "\n"),
	}, nil
}

// source returns the template text, preferring a committed override
func (r *Renderer) source(name string) (string, error) {
	override := fmt.Sprintf("%s/%s.tmpl", TemplateRoot, name)
	if text, err := r.repo.ReadFile(override); err == nil {
		return text, nil
	}
	if text, ok := r.builtins[name]; ok {
		return text, nil
	}
	return "", errors.New(errors.ErrCodeConfigNotFound,
		fmt.Sprintf("no notification template named %q", name)).
		WithSuggestions(fmt.Sprintf("Commit %s.tmpl under %s or use a built-in template", name, TemplateRoot))
}

// BuildDigest assembles the digest for one profile and state, joining the
// enumerated records with their most recent audit entry
func BuildDigest(reader *audit.Reader, records []*audit.CommitRecord, profile string, state audit.State) (Digest, error) {
	digest := Digest{
		Profile: profile,
		State:   state,
		Date:    time.Now().Format("2006-01-02"),
	}

	for _, rec := range records {
		if rec.State != state || rec.Profile != profile {
			continue
		}

		line := DigestRecord{
			SHA1:   rec.SHA1,
			Author: rec.Author,
			Date:   rec.Date,
		}
		line.ShortSHA = rec.SHA1
		if len(line.ShortSHA) > 8 {
			line.ShortSHA = line.ShortSHA[:8]
		}

		entries, err := reader.History(audit.Filter{Commit: rec.SHA1})
		if err != nil {
			return Digest{}, err
		}
		if len(entries) > 0 {
			last := entries[len(entries)-1]
			line.Reviewer = last.AuthorEmail
			line.Reason = last.Fields[audit.KeyReason]
			line.Message = firstLine(last.Fields[audit.KeyMessage])
			if line.Message == "" {
				line.Message = firstLine(last.FreeText)
			}
		}
		digest.Records = append(digest.Records, line)
	}
	return digest, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

const concernsTemplate = `[code-review] {{len .Records}} commit(s) with concerns in {{.Profile}}
The following commits collected review concerns as of {{.Date}}:
{{range .Records}}
  {{.ShortSHA}}  authored {{.Date}} by {{.Author}}
    concern by {{.Reviewer}}{{if .Reason}} ({{.Reason}}){{end}}{{if .Message}}
    {{.Message}}{{end}}
{{end}}
Address the concerns and reply with the fixing commit hash.
`

const selectionTemplate = `[code-review] {{len .Records}} commit(s) awaiting review in {{.Profile}}
The review queue for profile {{.Profile}} as of {{.Date}}:
{{range .Records}}
  {{.ShortSHA}}  authored {{.Date}} by {{.Author}}
{{end}}
Run 'codereview pick' to claim one.
`
