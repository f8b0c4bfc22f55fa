package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/ui"
	"codereview/pkg/errors"
)

var pickCmd = &cobra.Command{
	Use:   "pick [commit]",
	Short: "Lock a commit for review",
	Long: "Moves a review-state record under your lock directory so no other\n" +
		"reviewer picks it up. Without an argument, presents the current\n" +
		"profile's review queue to choose from.",
	Args: cobra.MaximumNArgs(1),
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	var rec *audit.CommitRecord
	if len(args) == 1 {
		if rec, err = app.resolveRecord(args[0]); err != nil {
			return err
		}
		if rec.State != audit.StateReview {
			return errors.New(errors.ErrCodeInvalidState,
				fmt.Sprintf("commit %s is %s, only review-state commits can be picked",
					ui.FormatRecord(rec).ShortSHA, rec.State))
		}
	} else {
		if rec, err = pickFromQueue(app); err != nil {
			return err
		}
		if rec == nil {
			ui.ShowInfo("nothing waiting for review")
			return nil
		}
	}

	if err := app.Engine.Lock(rec, nil); err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("locked %s for review", ui.FormatRecord(rec).ShortSHA))
	return nil
}

// pickFromQueue prompts over the profile's review queue, excluding commits
// the reviewer has resigned from
func pickFromQueue(app *App) (*audit.CommitRecord, error) {
	records, err := app.Engine.Records()
	if err != nil {
		return nil, err
	}
	resigned, err := audit.Resignations(app.Audit, app.Engine.LockUser())
	if err != nil {
		return nil, err
	}

	var queue []*audit.CommitRecord
	byBase := make(map[string]*audit.CommitRecord)
	var options []ui.RecordInfo
	for _, rec := range records {
		if rec.State != audit.StateReview || rec.Profile != app.Profile {
			continue
		}
		if resigned[rec.Base] {
			continue
		}
		queue = append(queue, rec)
		byBase[rec.SHA1] = rec
		options = append(options, ui.FormatRecord(rec))
	}
	if len(queue) == 0 {
		return nil, nil
	}

	sha1, err := ui.SelectRecord(options)
	if err != nil {
		return nil, err
	}
	return byBase[sha1], nil
}
