package models

import "time"

// SourceCommit is a candidate commit found in the source repository log
type SourceCommit struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	Date        time.Time
	Subject     string
	Files       []string
}

// SourcePin records which source commit the audit repository tracks.
// Stored as .code-review/source.yaml and bumped by 'codereview sync'.
type SourcePin struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
	Commit string `yaml:"commit"`
}
