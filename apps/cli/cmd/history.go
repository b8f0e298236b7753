package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/chainspec/chainspec/packages/db"
	"github.com/spf13/cobra"
)

var (
	historyDBPathFlag string
	historyLimitFlag  int
	historyRunFlag    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs from the history database",
	Long: `History lists recent runs recorded in the SQLite history database
(written when history.db is configured or --history-db is passed to run).
With --run it prints the scenario outcomes of a single run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyDBPathFlag == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error: no history database (use --db or set history.db)")
			os.Exit(ExitConfigError)
		}

		h, err := db.Open(historyDBPathFlag)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			os.Exit(ExitSuiteError)
		}
		defer h.Close()

		if historyRunFlag != "" {
			return printRunDetail(cmd, h, historyRunFlag)
		}
		return printRecentRuns(cmd, h)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyDBPathFlag, "db", getEnvString("CHAINSPEC_HISTORY_DB", "chainspec.db"), "Path to the history database (env: CHAINSPEC_HISTORY_DB)")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyRunFlag, "run", "", "Show scenario outcomes for one run id")
}

func printRecentRuns(cmd *cobra.Command, h *db.History) error {
	runs, err := h.RecentRuns(historyLimitFlag)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTARTED\tSUITE\tENV\tPASSED\tFAILED\tSKIPPED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%dms\n",
			r.RunID, r.StartedAt, r.Suite, r.Environment,
			r.Passed, r.Failed, r.Skipped, r.DurationMs)
	}
	return w.Flush()
}

func printRunDetail(cmd *cobra.Command, h *db.History, runID string) error {
	scenarios, err := h.ScenarioResults(runID)
	if err != nil {
		return err
	}
	if len(scenarios) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No scenarios recorded for run %s.\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tSTATUS\tDURATION\tDETAIL")
	for _, s := range scenarios {
		detail := s.Error
		if s.SkipReason != "" {
			detail = s.SkipReason
		}
		fmt.Fprintf(w, "%s\t%s\t%dms\t%s\n", s.Name, s.Status, s.DurationMs, detail)
	}
	return w.Flush()
}
