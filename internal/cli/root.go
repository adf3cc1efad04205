package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	rootCmd *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "clancy",
		Short: "Claude Code session harness with cross-session memory",
		Long: `clancy runs Claude Code tasks for a named project and keeps what it learns.

Before every task it injects a context document built from the project's notes
and the session so far. After every task it extracts architecture, decisions,
failures and plan updates from the transcript and merges them into the notes.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeLogging()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the clancy version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "clancy %s\n", cmd.Root().Version)
	},
}

// Execute runs the root command
func Execute(version string) error {
	// Add subcommands here to ensure proper initialization order
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		closeLogging()
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
