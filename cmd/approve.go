package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/ui"
)

// approveReasons are the accepted approval categories
var approveReasons = []string{
	"code is correct",
	"cosmetic concerns only",
	"concerns addressed",
	"other",
}

var (
	approveReason  string
	approveMessage string
	approveFixedBy string
)

var approveCmd = &cobra.Command{
	Use:   "approve [commit]",
	Short: "Approve a commit",
	Long: "Moves a commit to the approved state with a reason code. Approving\n" +
		"a commit that previously collected concerns records who fixed them.",
	Args: cobra.MaximumNArgs(1),
	RunE: runApprove,
}

func init() {
	approveCmd.Flags().StringVar(&approveReason, "reason", "", "approval reason")
	approveCmd.Flags().StringVarP(&approveMessage, "message", "m", "", "free-form commentary")
	approveCmd.Flags().StringVar(&approveFixedBy, "fixed-by", "", "commit hash that addressed earlier concerns")
	rootCmd.AddCommand(approveCmd)
}

func runApprove(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	rec, err := lockedTarget(app, args)
	if err != nil {
		return err
	}
	if rec == nil {
		ui.ShowInfo("you have no locked commits to approve")
		return nil
	}

	reason := approveReason
	if reason == "" {
		if reason, err = ui.AskReason("Why are you approving this commit?", approveReasons); err != nil {
			return err
		}
	}

	details := audit.Details{audit.KeyReason: reason}
	if approveMessage != "" {
		details[audit.KeyMessage] = approveMessage
	}
	if approveFixedBy != "" {
		details[audit.KeyFixedBy] = approveFixedBy
	} else if reason == "concerns addressed" {
		fixedBy, err := ui.AskDetails("Which commit addressed the concerns?")
		if err != nil {
			return err
		}
		if fixedBy != "" {
			details[audit.KeyFixedBy] = fixedBy
		}
	}

	if err := app.Engine.ChangeState(rec, audit.StateApproved, details); err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("approved %s", ui.FormatRecord(rec).ShortSHA))
	return nil
}

// lockedTarget resolves the commit a verdict applies to. With an explicit
// argument any record resolves; without one the reviewer's own locks are
// offered, or taken directly when there is exactly one.
func lockedTarget(app *App, args []string) (*audit.CommitRecord, error) {
	if len(args) == 1 {
		return app.resolveRecord(args[0])
	}

	records, err := app.Engine.Records()
	if err != nil {
		return nil, err
	}

	var mine []*audit.CommitRecord
	for _, rec := range records {
		if rec.State == audit.StateLocked && rec.LockedBy == app.Engine.LockUser() {
			mine = append(mine, rec)
		}
	}
	switch len(mine) {
	case 0:
		return nil, nil
	case 1:
		return mine[0], nil
	}

	options := make([]ui.RecordInfo, 0, len(mine))
	byBase := make(map[string]*audit.CommitRecord, len(mine))
	for _, rec := range mine {
		options = append(options, ui.FormatRecord(rec))
		byBase[rec.SHA1] = rec
	}
	sha1, err := ui.SelectRecord(options)
	if err != nil {
		return nil, err
	}
	return byBase[sha1], nil
}
