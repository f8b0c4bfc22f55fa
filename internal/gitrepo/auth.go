package gitrepo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// getAuthMethod returns the appropriate auth method based on the URL
func getAuthMethod(gitURL string) transport.AuthMethod {
	// Check if it's an SSH URL
	if strings.HasPrefix(gitURL, "git@") || strings.HasPrefix(gitURL, "ssh://") {
		// Try to use SSH key from default location
		sshKeyPath := filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		if _, err := os.Stat(sshKeyPath); err == nil {
			auth, err := ssh.NewPublicKeysFromFile("git", sshKeyPath, "")
			if err == nil {
				return auth
			}
		}
	}

	// Check for HTTPS with credentials
	if strings.HasPrefix(gitURL, "https://") {
		username := os.Getenv("GIT_USERNAME")
		password := os.Getenv("GIT_PASSWORD")
		if username != "" && password != "" {
			return &http.BasicAuth{
				Username: username,
				Password: password,
			}
		}

		token := os.Getenv("GITHUB_TOKEN")
		if token != "" {
			return &http.BasicAuth{
				Username: "token",
				Password: token,
			}
		}
	}

	// Local paths and anonymous remotes need no auth
	return nil
}
