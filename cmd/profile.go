package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"codereview/internal/audit"
	"codereview/internal/common"
	"codereview/internal/profile"
	"codereview/internal/ui"
	"codereview/pkg/models"
)

var (
	profileCreatePaths   []string
	profileCreateAuthors []string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage review profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List provisioned profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile's selection criteria and notification settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Provision a new profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileCreate,
}

func init() {
	profileCreateCmd.Flags().StringSliceVar(&profileCreatePaths, "path-pattern", nil, "path glob selecting commits for this profile")
	profileCreateCmd.Flags().StringSliceVar(&profileCreateAuthors, "author-pattern", nil, "author pattern selecting commits for this profile")
	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileCreateCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}

	names, err := app.Profiles.Profiles()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		criteria, err := app.Profiles.Criteria(name)
		if err != nil {
			return err
		}
		rows = append(rows, []string{
			name,
			strings.Join(criteria.Path, ", "),
			strings.Join(criteria.Author, ", "),
		})
	}

	ui.RenderTable(cmd.OutOrStdout(), []string{"Profile", "Path Patterns", "Author Patterns"}, rows)
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}
	name := args[0]

	if err := app.Profiles.Validate(name); err != nil {
		return err
	}

	criteria, err := app.Profiles.Criteria(name)
	if err != nil {
		return err
	}
	notification, err := app.Profiles.Notification(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Profile: %s\n\n", name)
	fmt.Fprintln(out, "Selection criteria:")
	for _, p := range criteria.Path {
		fmt.Fprintf(out, "  path:   %s\n", p)
	}
	for _, a := range criteria.Author {
		fmt.Fprintf(out, "  author: %s\n", a)
	}
	if notification.Template != "" || len(notification.To) > 0 {
		fmt.Fprintln(out, "\nNotification:")
		fmt.Fprintf(out, "  template: %s\n", notification.Template)
		fmt.Fprintf(out, "  to:       %s\n", strings.Join(notification.To, ", "))
	}
	return nil
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	app, err := newSyncedApp()
	if err != nil {
		return err
	}
	name := args[0]

	exists, err := app.Profiles.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("profile %q already exists", name)
	}
	if len(profileCreatePaths) == 0 && len(profileCreateAuthors) == 0 {
		return fmt.Errorf("profile %q needs at least one --path-pattern or --author-pattern", name)
	}

	criteria := models.SelectionCriteria{
		Path:   profileCreatePaths,
		Author: profileCreateAuthors,
	}
	data, err := yaml.Marshal(&criteria)
	if err != nil {
		return err
	}

	rel := profile.SelectionPath(name)
	full := filepath.Join(app.Config.Audit.Path, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), common.DirPermissionNormal); err != nil {
		return err
	}
	if err := os.WriteFile(full, data, common.FilePermissionNormal); err != nil {
		return err
	}

	details := audit.Details{audit.KeyProfile: name}
	err = app.Engine.AdminCommit([]string{rel},
		fmt.Sprintf("Provision review profile %s", name), details)
	if err != nil {
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("profile %q provisioned", name))
	return nil
}
