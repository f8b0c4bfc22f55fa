package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/ui"
)

var (
	listState       string
	listAllProfiles bool
	listMine        bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List commits under audit",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listState, "state", "", "only show records in this state (review, locked, approved, concerns)")
	listCmd.Flags().BoolVar(&listAllProfiles, "all-profiles", false, "show records from every profile")
	listCmd.Flags().BoolVar(&listMine, "mine", false, "only show records locked by you")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	var stateFilter audit.State
	if listState != "" {
		if stateFilter, err = audit.ParseState(listState); err != nil {
			return err
		}
	}

	records, err := app.Engine.Records()
	if err != nil {
		return err
	}
	resigned, err := audit.Resignations(app.Audit, app.Engine.LockUser())
	if err != nil {
		return err
	}

	var rows [][]string
	for _, rec := range records {
		if stateFilter != "" && rec.State != stateFilter {
			continue
		}
		if !listAllProfiles && rec.State != audit.StateLocked && rec.Profile != app.Profile {
			continue
		}
		if listMine && rec.LockedBy != app.Engine.LockUser() {
			continue
		}
		if resigned[rec.Base] && rec.State == audit.StateReview {
			continue
		}

		info := ui.FormatRecord(rec)
		state := ui.ColorState(string(rec.State))
		if rec.State == audit.StateLocked {
			state = fmt.Sprintf("%s by %s", ui.ColorState("locked"), rec.LockedBy)
		}
		rows = append(rows, []string{info.ShortSHA, state, info.Profile, info.Author, info.Date})
	}

	if len(rows) == 0 {
		ui.ShowInfo("no matching records")
		return nil
	}
	ui.RenderTable(os.Stdout, []string{"Commit", "State", "Profile", "Author", "Date"}, rows)
	return nil
}
