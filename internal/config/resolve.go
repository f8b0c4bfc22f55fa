package config

import (
	gitcfg "github.com/go-git/go-git/v5/config"

	"codereview/internal/gitrepo"
	"codereview/pkg/errors"
	"codereview/pkg/models"
)

// gitConfigSection is the custom section this tool reads from the audit
// repository's git configuration
const gitConfigSection = "codereview"

// ResolveUser determines the acting reviewer: the tool configuration wins,
// then the audit repository's git identity. A reviewer without an email
// cannot transition records, so that is a fatal configuration error.
func ResolveUser(cfg *models.Config, audit *gitrepo.Handle) (models.User, error) {
	user := cfg.User
	if user.Email != "" {
		if user.Name == "" {
			user.Name = user.Email
		}
		return user, nil
	}

	if gc, err := audit.Repo().ConfigScoped(gitcfg.SystemScope); err == nil {
		if gc.User.Email != "" {
			name := gc.User.Name
			if name == "" {
				name = gc.User.Email
			}
			return models.User{Name: name, Email: gc.User.Email}, nil
		}
	}

	return models.User{}, errors.New(errors.ErrCodeConfigNotFound,
		"no reviewer identity configured").
		WithSuggestions(
			"Set user.email in the tool configuration",
			"Or configure git user.email in the audit repository",
		)
}

// ResolveProfile determines the current profile: an explicit command-line
// override wins, then the codereview.profile git config setting, then the
// tool configuration, then the implicit default.
func ResolveProfile(flagValue string, cfg *models.Config, audit *gitrepo.Handle) string {
	if flagValue != "" {
		return flagValue
	}

	if audit != nil {
		if gc, err := audit.Repo().ConfigScoped(gitcfg.SystemScope); err == nil {
			if p := gc.Raw.Section(gitConfigSection).Option("profile"); p != "" {
				return p
			}
		}
	}

	if cfg.Profile != "" {
		return cfg.Profile
	}
	return "default"
}
