package profile

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"codereview/internal/audit"
	"codereview/pkg/errors"
	"codereview/pkg/models"
)

// DefaultProfile always implicitly exists, even in an unprovisioned audit
// repository
const DefaultProfile = "default"

const (
	profilesRoot     = audit.ConfigRoot + "/profiles"
	selectionFile    = "selection.yaml"
	notificationFile = "notification.config"
)

// Resolver maps records to their owning profile and loads per-profile
// configuration from the audit repository tree
type Resolver struct {
	repo audit.Repository
}

// NewResolver creates a resolver over the audit repository
func NewResolver(repo audit.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Profiles returns every provisioned profile name plus the implicit
// default, sorted
func (r *Resolver) Profiles() ([]string, error) {
	files, err := r.repo.ListFiles()
	if err != nil {
		return nil, err
	}

	set := map[string]bool{DefaultProfile: true}
	for _, f := range files {
		rest, ok := strings.CutPrefix(f, profilesRoot+"/")
		if !ok {
			continue
		}
		segs := strings.Split(rest, "/")
		if len(segs) == 2 && segs[1] == selectionFile {
			set[segs[0]] = true
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether a profile is provisioned (or is the default)
func (r *Resolver) Exists(name string) (bool, error) {
	if name == DefaultProfile {
		return true, nil
	}
	names, err := r.Profiles()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// Validate fails fast when an explicitly named, non-default profile lacks a
// provisioned directory
func (r *Resolver) Validate(name string) error {
	ok, err := r.Exists(name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrCodeProfileNotFound,
			fmt.Sprintf("profile %q is not provisioned", name)).
			WithSuggestions(
				fmt.Sprintf("Create it with: codereview profile create %s", name),
				"Run 'codereview profile list' to see provisioned profiles",
			)
	}
	return nil
}

// Criteria loads a profile's selection.yaml. The default profile falls back
// to match-everything patterns when the file is absent; for any other
// profile a missing file is a fatal configuration error.
func (r *Resolver) Criteria(name string) (*models.SelectionCriteria, error) {
	content, err := r.repo.ReadFile(SelectionPath(name))
	if err != nil {
		if name == DefaultProfile {
			return &models.SelectionCriteria{Path: []string{"*"}}, nil
		}
		return nil, errors.New(errors.ErrCodeProfileNotFound,
			fmt.Sprintf("profile %q has no %s", name, selectionFile))
	}

	var criteria models.SelectionCriteria
	if err := yaml.Unmarshal([]byte(content), &criteria); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSelectionInvalid,
			fmt.Sprintf("malformed %s for profile %q", selectionFile, name))
	}
	if len(criteria.Path) == 0 && len(criteria.Author) == 0 {
		return nil, errors.New(errors.ErrCodeSelectionInvalid,
			fmt.Sprintf("profile %q selection criteria define no patterns", name))
	}
	return &criteria, nil
}

// Notification loads a profile's notification.config; absent files yield an
// empty configuration since notification delivery is optional
func (r *Resolver) Notification(name string) (*models.Notification, error) {
	content, err := r.repo.ReadFile(NotificationPath(name))
	if err != nil {
		return &models.Notification{}, nil
	}

	var notification models.Notification
	if err := yaml.Unmarshal([]byte(content), &notification); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid,
			fmt.Sprintf("malformed %s for profile %q", notificationFile, name))
	}
	return &notification, nil
}

// SelectionPath is the repository path of a profile's selection criteria
func SelectionPath(name string) string {
	return path.Join(profilesRoot, name, selectionFile)
}

// NotificationPath is the repository path of a profile's notification config
func NotificationPath(name string) string {
	return path.Join(profilesRoot, name, notificationFile)
}
