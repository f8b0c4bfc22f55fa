package models

// Config is the tool-level configuration stored under ~/.codereview
type Config struct {
	Audit   AuditRepo  `yaml:"audit"`
	Source  SourceRepo `yaml:"source"`
	User    User       `yaml:"user"`
	Profile string     `yaml:"profile"`
}

// AuditRepo locates the audit repository, the system of record
type AuditRepo struct {
	Path   string `yaml:"path"`
	Remote string `yaml:"remote"`
	Branch string `yaml:"branch"`
}

// SourceRepo describes the reviewed source repository tracked under source/
type SourceRepo struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch"`
}

// User identifies the reviewer running the tool
type User struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// SelectionCriteria is the schema of a profile's selection.yaml: ordered
// glob/author patterns used to build search queries against the source log
type SelectionCriteria struct {
	Path   []string `yaml:"path"`
	Author []string `yaml:"author"`
}

// Notification is the schema of a profile's notification.config
type Notification struct {
	Template string   `yaml:"template"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	CC       []string `yaml:"cc"`
	SMTP     SMTP     `yaml:"smtp"`
	JIRA     JIRA     `yaml:"jira"`
}

// SMTP holds mail transport settings; the password lives in the credential
// store under CredentialKey, never in the repository
type SMTP struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Username      string `yaml:"username"`
	CredentialKey string `yaml:"credential_key"`
}

// JIRA holds ticket-creation settings for concern escalation
type JIRA struct {
	URL           string `yaml:"url"`
	Project       string `yaml:"project"`
	CredentialKey string `yaml:"credential_key"`
}
