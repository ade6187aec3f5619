package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/cook/internal/audit"
	"github.com/Iron-Ham/cook/internal/config"
	"github.com/Iron-Ham/cook/internal/logging"
	"github.com/Iron-Ham/cook/internal/tui/styles"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded session events",
	Long: `Show session lifecycle events from the audit trail.

Events are only recorded while audit.enabled is true.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit   int
	historySession string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of most recent events to show")
	historyCmd.Flags().StringVar(&historySession, "session", "", "show every event of one session")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(cfg.Audit.DBPath); os.IsNotExist(err) {
		fmt.Fprintf(out, "No audit trail at %s\n", cfg.Audit.DBPath)
		if !cfg.Audit.Enabled {
			fmt.Fprintln(out, "Enable it with: cook config set audit.enabled true")
		}
		return nil
	}

	rec, err := audit.Open(cfg.Audit.DBPath, logging.NopLogger())
	if err != nil {
		return err
	}
	defer func() { _ = rec.Close() }()

	var records []audit.Record
	if historySession != "" {
		records, err = rec.ForSession(cmd.Context(), historySession)
	} else {
		records, err = rec.Recent(cmd.Context(), historyLimit)
	}
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No events recorded.")
		return nil
	}

	width := termWidth(120)
	for _, r := range records {
		line := fmt.Sprintf("%s  %-10s %-8s %-9s %3d%%  %s",
			r.At.Local().Format("2006-01-02 15:04:05"), r.SessionID, r.Kind, r.Status, r.Progress, r.Detail)
		fmt.Fprintln(out, styles.Fit(line, width))
	}
	return nil
}
