package cmd

import (
	"codereview/internal/audit"
	"codereview/internal/config"
	"codereview/internal/gitrepo"
	"codereview/internal/profile"
	"codereview/pkg/models"
)

// App is the per-invocation context object: configuration, repository
// handles, and the resolved reviewer and profile, constructed once and
// threaded through the command instead of process-wide caches.
type App struct {
	Config   *models.Config
	Repos    *gitrepo.Manager
	Audit    *gitrepo.Handle
	Engine   *audit.Engine
	Reader   *audit.Reader
	Profiles *profile.Resolver
	User     models.User
	Profile  string
}

// newApp builds the application context for one command invocation
func newApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	repos := gitrepo.NewManager(cfg)
	auditHandle, err := repos.Open(gitrepo.KindAudit)
	if err != nil {
		return nil, err
	}

	user, err := config.ResolveUser(cfg, auditHandle)
	if err != nil {
		return nil, err
	}

	engine := audit.NewEngine(auditHandle, user)
	resolver := profile.NewResolver(auditHandle)
	currentProfile := config.ResolveProfile(profileFlag, cfg, auditHandle)

	return &App{
		Config:   cfg,
		Repos:    repos,
		Audit:    auditHandle,
		Engine:   engine,
		Reader:   engine.Reader(),
		Profiles: resolver,
		User:     user,
		Profile:  currentProfile,
	}, nil
}

// newSyncedApp builds the context and resets the audit repository so the
// command sees the latest remote state
func newSyncedApp() (*App, error) {
	app, err := newApp()
	if err != nil {
		return nil, err
	}
	if err := app.Audit.Reset(); err != nil {
		return nil, err
	}
	return app, nil
}

// validateProfile fails fast when a non-default profile is not provisioned
func (a *App) validateProfile() error {
	if a.Profile == profile.DefaultProfile {
		return nil
	}
	return a.Profiles.Validate(a.Profile)
}

// resolveRecord looks up a record and recovers the profile of locked ones
func (a *App) resolveRecord(object string) (*audit.CommitRecord, error) {
	return audit.Resolve(a.Audit, object)
}
