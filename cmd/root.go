package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fedintake",
	Short: "Weekly art submission intake bot",
	Long: `fedintake watches a Mastodon account for tagged submissions, checks them
against the weekly issue deadline, cross-posts accepted work to a Lemmy
community and replies to the submitter.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewWindowCmd())
	rootCmd.AddCommand(NewVersionCmd())
}
