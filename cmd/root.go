package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codereview/internal/ui"
	"codereview/pkg/errors"
)

var (
	profileFlag string

	rootCmd = &cobra.Command{
		Use:   "codereview",
		Short: "Audit source commits through a review workflow",
		Long: "codereview - a commit audit workflow backed by a git repository.\n" +
			"Reviewers pick commits, lock them, and approve or raise concerns;\n" +
			"every transition is preserved as an audit commit.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the CLI, printing failures to standard error and exiting
// non-zero. Every fatal condition requires operator re-invocation; there
// are no automatic retries.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(err)
		if handler, herr := errors.NewErrorHandler(errors.DefaultErrorHandlerConfig()); herr == nil {
			handler.Log(err)
			handler.Close()
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "review profile to operate on")
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home + "/.codereview")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is okay; commands validate what they need
	}
}
