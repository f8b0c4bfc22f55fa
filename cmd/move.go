package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/ui"
)

var moveCmd = &cobra.Command{
	Use:   "move <commit> <profile>",
	Short: "Move a commit to another review profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	target := args[1]
	if err := app.Profiles.Validate(target); err != nil {
		return err
	}

	rec, err := app.resolveRecord(args[0])
	if err != nil {
		return err
	}

	details := audit.Details{}
	if err := app.Engine.ChangeProfile(rec, target, details); err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("moved %s to profile %q", ui.FormatRecord(rec).ShortSHA, target))
	return nil
}
