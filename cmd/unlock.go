package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/ui"
	"codereview/pkg/errors"
)

var unlockForce bool

var unlockCmd = &cobra.Command{
	Use:   "unlock <commit>",
	Short: "Release a locked commit back to the review queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnlock,
}

func init() {
	unlockCmd.Flags().BoolVar(&unlockForce, "force", false, "release a lock held by someone else")
	rootCmd.AddCommand(unlockCmd)
}

func runUnlock(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	rec, err := app.resolveRecord(args[0])
	if err != nil {
		return err
	}
	if rec.State != audit.StateLocked {
		return errors.New(errors.ErrCodeInvalidState,
			fmt.Sprintf("commit %s is not locked", ui.FormatRecord(rec).ShortSHA))
	}
	if rec.LockedBy != app.Engine.LockUser() && !unlockForce {
		return errors.New(errors.ErrCodeInvalidState,
			fmt.Sprintf("commit %s is locked by %s", ui.FormatRecord(rec).ShortSHA, rec.LockedBy)).
			WithSuggestions("Pass --force to release someone else's lock")
	}

	var details audit.Details
	if rec.LockedBy != app.Engine.LockUser() {
		ui.ShowWarning(fmt.Sprintf("releasing a lock held by %s", rec.LockedBy))
		details = audit.Details{audit.KeyReason: "stale lock released"}
	}
	if err := app.Engine.Unlock(rec, details); err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("unlocked %s", ui.FormatRecord(rec).ShortSHA))
	return nil
}
