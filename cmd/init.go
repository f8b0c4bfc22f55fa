package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/common"
	"codereview/internal/config"
	"codereview/internal/gitrepo"
	"codereview/internal/profile"
	"codereview/internal/ui"
	"codereview/pkg/models"
)

var (
	initAuditPath    string
	initSourceURL    string
	initSourceBranch string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Provision the audit repository",
	Long: "Scaffolds the .code-review layout inside an existing clone of the\n" +
		"audit repository, pins the source repository, and saves the tool\n" +
		"configuration.",
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initAuditPath, "audit-path", ".", "path to the audit repository clone")
	initCmd.Flags().StringVar(&initSourceURL, "source-url", "", "URL of the source repository to audit")
	initCmd.Flags().StringVar(&initSourceBranch, "source-branch", "master", "source branch to track")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	auditPath, err := filepath.Abs(initAuditPath)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Audit.Path = auditPath
	if initSourceURL != "" {
		cfg.Source.URL = initSourceURL
		cfg.Source.Branch = initSourceBranch
	}

	repos := gitrepo.NewManager(cfg)
	auditHandle, err := repos.Open(gitrepo.KindAudit)
	if err != nil {
		return err
	}
	if err := auditHandle.Reset(); err != nil {
		return err
	}

	user, err := config.ResolveUser(cfg, auditHandle)
	if err != nil {
		return err
	}
	engine := audit.NewEngine(auditHandle, user)

	staged, err := scaffoldAudit(auditPath)
	if err != nil {
		return err
	}

	if initSourceURL != "" {
		pin := &models.SourcePin{URL: initSourceURL, Branch: initSourceBranch}
		if err := repos.WriteSourcePin(pin); err != nil {
			return err
		}
		staged = append(staged, gitrepo.SourcePinPath)
	}

	if len(staged) > 0 {
		err = engine.AdminCommit(staged, "Provision code review audit repository", nil)
		if err != nil {
			return err
		}
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("audit repository provisioned at %s", auditPath))
	return nil
}

// scaffoldAudit writes the baseline layout and returns the paths that need
// committing. Files that already exist are left alone.
func scaffoldAudit(auditPath string) ([]string, error) {
	var staged []string

	entries := map[string]string{
		".gitignore": "/source/\n",
		profile.SelectionPath(profile.DefaultProfile): "path:\n  - \"*\"\n",
	}
	for rel, content := range entries {
		full := filepath.Join(auditPath, filepath.FromSlash(rel))
		if _, err := os.Stat(full); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), common.DirPermissionNormal); err != nil {
			return nil, err
		}
		if err := os.WriteFile(full, []byte(content), common.FilePermissionNormal); err != nil {
			return nil, err
		}
		staged = append(staged, rel)
	}
	return staged, nil
}
