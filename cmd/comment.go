package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codereview/internal/ui"
	"codereview/pkg/errors"
)

var commentMessage string

var commentCmd = &cobra.Command{
	Use:   "comment <commit>",
	Short: "Attach a comment to a commit without changing its state",
	Args:  cobra.ExactArgs(1),
	RunE:  runComment,
}

func init() {
	commentCmd.Flags().StringVarP(&commentMessage, "message", "m", "", "comment text")
	rootCmd.AddCommand(commentCmd)
}

func runComment(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	rec, err := app.resolveRecord(args[0])
	if err != nil {
		return err
	}

	text := commentMessage
	if text == "" {
		if text, err = ui.AskDetails("Comment:"); err != nil {
			return err
		}
	}
	if text == "" {
		return errors.New(errors.ErrCodeRequiredField, "comment text is required").
			WithContext("field", "message")
	}

	if err := app.Engine.Comment(rec, text); err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("comment recorded on %s", ui.FormatRecord(rec).ShortSHA))
	return nil
}
