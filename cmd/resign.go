package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/ui"
	"codereview/pkg/errors"
)

var resignReason string

var resignCmd = &cobra.Command{
	Use:   "resign <commit>",
	Short: "Resign from reviewing a commit",
	Long: "Marks a commit as one you will not review, typically because you\n" +
		"authored it. The commit stays in everyone else's queue; it simply\n" +
		"stops appearing in yours.",
	Args: cobra.ExactArgs(1),
	RunE: runResign,
}

func init() {
	resignCmd.Flags().StringVar(&resignReason, "reason", "own commit", "why you are resigning")
	rootCmd.AddCommand(resignCmd)
}

func runResign(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	rec, err := app.resolveRecord(args[0])
	if err != nil {
		return err
	}
	if rec.State == audit.StateLocked && rec.LockedBy != app.Engine.LockUser() {
		return errors.New(errors.ErrCodeInvalidState,
			fmt.Sprintf("commit %s is locked by %s", ui.FormatRecord(rec).ShortSHA, rec.LockedBy)).
			WithSuggestions("Ask the lock holder to release it first")
	}

	already, err := audit.IsResigned(app.Audit, app.Engine.LockUser(), rec.Base)
	if err != nil {
		return err
	}
	if already {
		ui.ShowInfo(fmt.Sprintf("already resigned from %s", ui.FormatRecord(rec).ShortSHA))
		return nil
	}

	details := audit.Details{audit.KeyReason: resignReason}
	if err := app.Engine.Resign(rec, details); err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("resigned from %s", ui.FormatRecord(rec).ShortSHA))
	return nil
}
