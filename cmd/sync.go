package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/gitrepo"
	"codereview/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Update the audit repository and the source checkout",
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	pin, moved, err := app.Repos.SyncSource()
	if err != nil {
		return err
	}
	if moved {
		if err := commitSourceBump(app, pin.Commit); err != nil {
			return err
		}
		ui.ShowSuccess(fmt.Sprintf("source advanced to %s", shortHash(pin.Commit)))
		return nil
	}

	ui.ShowInfo("audit and source repositories are up to date")
	return nil
}

// commitSourceBump records the refreshed source pointer as an audited commit
func commitSourceBump(app *App, commit string) error {
	pin, err := app.Repos.ReadSourcePin(app.Audit)
	if err != nil {
		return err
	}
	pin.Commit = commit
	if err := app.Repos.WriteSourcePin(pin); err != nil {
		return err
	}
	message := fmt.Sprintf("Advance source pointer to %s", shortHash(commit))
	return app.Engine.AdminCommit([]string{gitrepo.SourcePinPath}, message,
		audit.Details{audit.KeyCommit: commit})
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
