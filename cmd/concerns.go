package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/ui"
	"codereview/pkg/errors"
)

// concernReasons are the accepted concern categories
var concernReasons = []string{
	"incorrect behavior",
	"missing tests",
	"security issue",
	"style violation",
	"other",
}

var (
	concernsReason  string
	concernsMessage string
)

var concernsCmd = &cobra.Command{
	Use:   "concerns [commit]",
	Short: "Raise concerns about a commit",
	Long: "Moves a commit to the concerns state. A reason code and an\n" +
		"explanation are both required; the author needs enough to act on.",
	Args: cobra.MaximumNArgs(1),
	RunE: runConcerns,
}

func init() {
	concernsCmd.Flags().StringVar(&concernsReason, "reason", "", "concern reason")
	concernsCmd.Flags().StringVarP(&concernsMessage, "message", "m", "", "what is wrong and why")
	rootCmd.AddCommand(concernsCmd)
}

func runConcerns(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	rec, err := lockedTarget(app, args)
	if err != nil {
		return err
	}
	if rec == nil {
		ui.ShowInfo("you have no locked commits to raise concerns on")
		return nil
	}

	reason := concernsReason
	if reason == "" {
		if reason, err = ui.AskReason("What kind of concern?", concernReasons); err != nil {
			return err
		}
	}
	message := concernsMessage
	if message == "" {
		if message, err = ui.AskDetails("Describe the concern:"); err != nil {
			return err
		}
	}
	if message == "" {
		return errors.New(errors.ErrCodeRequiredField,
			"concerns require an explanation").
			WithContext("field", "message").
			WithSuggestions("Pass -m with a description of what is wrong")
	}

	details := audit.Details{
		audit.KeyReason:  reason,
		audit.KeyMessage: message,
	}
	if err := app.Engine.ChangeState(rec, audit.StateConcerns, details); err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("raised concerns on %s", ui.FormatRecord(rec).ShortSHA))
	return nil
}
