package gitrepo

import (
	"fmt"
	"path/filepath"

	"codereview/pkg/errors"
	"codereview/pkg/models"
)

// Kind selects one of the two working trees the tool operates on
type Kind string

const (
	KindAudit  Kind = "audit"
	KindSource Kind = "source"
)

// Manager memoizes repository handles for the process lifetime
type Manager struct {
	config  *models.Config
	handles map[Kind]*Handle
}

// NewManager creates a handle manager bound to the tool configuration
func NewManager(config *models.Config) *Manager {
	return &Manager{
		config:  config,
		handles: make(map[Kind]*Handle),
	}
}

// Open binds to a working tree; memoized per kind
func (m *Manager) Open(kind Kind) (*Handle, error) {
	if h, ok := m.handles[kind]; ok {
		return h, nil
	}

	var h *Handle
	var err error
	switch kind {
	case KindAudit:
		if m.config.Audit.Path == "" {
			return nil, errors.New(errors.ErrCodeConfigNotFound,
				"audit repository path is not configured").
				WithSuggestions("Set audit.path in the configuration file")
		}
		h, err = Open(m.config.Audit.Path, m.config.Audit.Remote, m.config.Audit.Branch)
	case KindSource:
		h, err = Open(m.SourcePath(), "origin", m.config.Source.Branch)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("unknown repository kind %q", kind))
	}
	if err != nil {
		return nil, err
	}

	m.handles[kind] = h
	return h, nil
}

// SourcePath is the source sub-checkout location inside the audit tree
func (m *Manager) SourcePath() string {
	return filepath.Join(m.config.Audit.Path, "source")
}

// Config returns the configuration the manager was built with
func (m *Manager) Config() *models.Config {
	return m.config
}
