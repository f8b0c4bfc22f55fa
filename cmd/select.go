package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/gitrepo"
	"codereview/internal/selection"
	"codereview/internal/ui"
	"codereview/pkg/errors"
)

var (
	selectSince string
	selectUntil string
	selectLimit int
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select candidate source commits into the review queue",
	Long: "Searches the source checkout's history with the current profile's\n" +
		"selection criteria and records each match as a review-state patch\n" +
		"record in the audit repository.",
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().StringVar(&selectSince, "since", "", "only consider commits after this date (yyyy-mm-dd)")
	selectCmd.Flags().StringVar(&selectUntil, "until", "", "only consider commits before this date (yyyy-mm-dd)")
	selectCmd.Flags().IntVar(&selectLimit, "limit", 25, "maximum number of records to select")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}
	if err := app.validateProfile(); err != nil {
		return err
	}

	// Bring the source checkout current before searching it
	pin, moved, err := app.Repos.SyncSource()
	if err != nil {
		return err
	}
	if moved {
		if err := commitSourceBump(app, pin.Commit); err != nil {
			return err
		}
	}

	criteria, err := app.Profiles.Criteria(app.Profile)
	if err != nil {
		return err
	}

	source, err := app.Repos.Open(gitrepo.KindSource)
	if err != nil {
		return err
	}

	opts := selection.Options{Limit: selectLimit}
	if opts.Since, err = parseDateFlag(selectSince); err != nil {
		return err
	}
	if opts.Until, err = parseDateFlag(selectUntil); err != nil {
		return err
	}

	selector := selection.New(source, criteria)
	candidates, err := selector.Candidates(opts)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		ui.ShowInfo("no matching commits to select")
		return nil
	}

	items := make([]audit.SelectionItem, 0, len(candidates))
	for _, candidate := range candidates {
		patch, err := selector.RenderPatch(candidate)
		if err != nil {
			return err
		}
		items = append(items, audit.SelectionItem{Commit: candidate, Patch: patch})
	}

	added, err := app.Engine.AddRecords(app.Profile, items)
	if err != nil {
		return err
	}
	if added == 0 {
		ui.ShowInfo("all matching commits are already under audit")
		return nil
	}

	ui.ShowSuccess(fmt.Sprintf("selected %d commits into profile %q", added, app.Profile))
	return nil
}

func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, errors.ValidationError("date", value, "expected yyyy-mm-dd")
	}
	return &t, nil
}
