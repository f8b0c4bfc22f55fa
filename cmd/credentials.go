package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"codereview/internal/security"
	"codereview/internal/ui"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage notification credentials",
	Long: "Stores SMTP and JIRA secrets in the system keychain (or an\n" +
		"encrypted file when no keychain is available). Profiles reference\n" +
		"them by name through notification.config; secret values never\n" +
		"enter the audit repository.",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Store a credential",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredentialsSet,
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credential names",
	RunE:  runCredentialsList,
}

var credentialsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE:  runCredentialsDelete,
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd, credentialsListCmd, credentialsDeleteCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func runCredentialsSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	value, err := ui.AskSecret(fmt.Sprintf("Value for %q:", name))
	if err != nil {
		return err
	}

	manager, err := security.NewCredentialManager()
	if err != nil {
		return err
	}
	if err := manager.Store(name, value); err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("credential %q stored", name))
	return nil
}

func runCredentialsList(cmd *cobra.Command, args []string) error {
	manager, err := security.NewCredentialManager()
	if err != nil {
		return err
	}
	names, err := manager.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		ui.ShowInfo("no credentials stored")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runCredentialsDelete(cmd *cobra.Command, args []string) error {
	confirmed, err := ui.Confirm(fmt.Sprintf("Remove credential %q?", args[0]), false)
	if err != nil {
		return err
	}
	if !confirmed {
		ui.ShowInfo("aborted")
		return nil
	}

	manager, err := security.NewCredentialManager()
	if err != nil {
		return err
	}
	if err := manager.Delete(args[0]); err != nil {
		return err
	}
	ui.ShowSuccess(fmt.Sprintf("credential %q removed", args[0]))
	return nil
}
