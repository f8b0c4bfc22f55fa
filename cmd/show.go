package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/ui"
)

var (
	showPatch       bool
	showSkipEntries bool
)

var showCmd = &cobra.Command{
	Use:   "show <commit>",
	Short: "Show a commit's audit record and history",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showPatch, "patch", false, "print the recorded patch content")
	showCmd.Flags().BoolVar(&showSkipEntries, "all", false, "include administrative audit entries")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	rec, err := app.resolveRecord(args[0])
	if err != nil {
		return err
	}
	if rec.State == audit.StateLocked {
		if hydrated, err := app.Engine.Records(); err == nil {
			for _, r := range hydrated {
				if r.Base == rec.Base {
					rec = r
					break
				}
			}
		}
	}

	info := ui.FormatRecord(rec)
	ui.ShowHeader(fmt.Sprintf("Commit %s", info.ShortSHA))
	summary := [][]string{
		{"Commit", rec.SHA1},
		{"State", ui.ColorState(string(rec.State))},
		{"Profile", rec.Profile},
		{"Author", rec.Author},
		{"Authored", rec.Date},
		{"Selected", rec.SelectDate},
		{"Path", rec.CurrentPath},
	}
	if rec.LockedBy != "" {
		summary = append(summary, []string{"Locked by", rec.LockedBy})
	}
	ui.RenderTable(os.Stdout, nil, summary)

	entries, err := app.Reader.History(audit.Filter{
		Commit:         rec.SHA1,
		IncludeSkipped: showSkipEntries,
	})
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Println()
		ui.ShowHeader("History")
		rows := make([][]string, 0, len(entries))
		for _, entry := range entries {
			note := entry.Fields[audit.KeyReason]
			if note == "" {
				note = entry.FreeText
			}
			rows = append(rows, []string{
				entry.Timestamp.Format("2006-01-02 15:04"),
				entry.Fields[audit.KeyState],
				entry.AuthorEmail,
				note,
			})
		}
		ui.RenderTable(os.Stdout, []string{"When", "State", "Reviewer", "Note"}, rows)
	}

	if showPatch {
		content, err := app.Audit.ReadFile(rec.CurrentPath)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(content)
	}
	return nil
}
