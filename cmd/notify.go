package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codereview/internal/audit"
	"codereview/internal/notify"
	"codereview/internal/security"
	"codereview/internal/ui"
)

var (
	notifyState  string
	notifyDryRun bool
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a review-queue digest for the current profile",
	Long: "Renders the profile's notification template over the records in\n" +
		"the chosen state and mails it to the recipients configured in\n" +
		"notification.config. Use --dry-run to print instead of sending.",
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().StringVar(&notifyState, "state", "concerns", "state to report on (review or concerns)")
	notifyCmd.Flags().BoolVar(&notifyDryRun, "dry-run", false, "print the rendered message instead of sending it")
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}
	if err := app.validateProfile(); err != nil {
		return err
	}

	state, err := audit.ParseState(notifyState)
	if err != nil {
		return err
	}
	templateName := "selection"
	if state == audit.StateConcerns {
		templateName = "concerns"
	}

	cfg, err := app.Profiles.Notification(app.Profile)
	if err != nil {
		return err
	}
	if cfg.Template != "" {
		templateName = cfg.Template
	}

	records, err := app.Engine.Records()
	if err != nil {
		return err
	}
	digest, err := notify.BuildDigest(app.Reader, records, app.Profile, state)
	if err != nil {
		return err
	}
	if len(digest.Records) == 0 {
		ui.ShowInfo(fmt.Sprintf("no %s records in profile %q, nothing to send", state, app.Profile))
		return nil
	}

	renderer := notify.NewRenderer(app.Audit)
	msg, err := renderer.Render(templateName, digest)
	if err != nil {
		return err
	}

	if notifyDryRun {
		fmt.Printf("Subject: %s\n\n%s", msg.Subject, msg.Body)
		return nil
	}

	credentials, err := security.NewCredentialManager()
	if err != nil {
		return err
	}
	if err := notify.NewSender(credentials).Send(cfg, msg); err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("digest sent to %d recipient(s)", len(cfg.To)+len(cfg.CC)))
	return nil
}
