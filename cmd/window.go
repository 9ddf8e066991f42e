package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/fedintake/internal/config"
	"github.com/shaharia-lab/fedintake/internal/window"
)

// NewWindowCmd returns the "window" subcommand that prints the open issue.
func NewWindowCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "window",
		Short: "Print the issue open at a given instant and its deadline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now().UTC()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parsing --at: %w", err)
				}
				now = t
			}

			wc, err := config.LoadWindow()
			if err != nil {
				return err
			}
			printWindow(cmd.OutOrStdout(), window.NewEngine(wc.PhaseOffset, wc.IssueOrigin), now)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Instant to evaluate, RFC3339 (defaults to now)")
	return cmd
}

func printWindow(w io.Writer, engine *window.Engine, now time.Time) {
	issue := engine.Current(now)
	fmt.Fprintf(w, "Issue:    %d\n", issue.ID)
	fmt.Fprintf(w, "Deadline: %s %s UTC\n", issue.DeadlineDate(), issue.DeadlineClock())
	fmt.Fprintf(w, "Closes:   %s\n", engine.Closes(issue.ID).UTC().Format(time.RFC3339))
}
