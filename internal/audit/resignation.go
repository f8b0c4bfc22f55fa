package audit

import "strings"

// Resignations loads the per-user set of record basenames the user has
// declined to review. Consulted only by picklist filtering, never by the
// state machine itself. A missing list means no resignations.
func Resignations(repo Repository, user string) (map[string]bool, error) {
	content, err := repo.ReadFile(ResignedPath(user))
	if err != nil {
		return map[string]bool{}, nil
	}

	set := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			set[line] = true
		}
	}
	return set, nil
}

// IsResigned reports whether the user has declined the given record
func IsResigned(repo Repository, user, base string) (bool, error) {
	set, err := Resignations(repo, user)
	if err != nil {
		return false, err
	}
	return set[base], nil
}
