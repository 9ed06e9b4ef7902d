package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwhale/bookbatch/pkg/duration"
)

var (
	runsListLimit  int
	runsPruneOlder string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and prune recorded job runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent job runs, newest first",
	RunE:  runRunsList,
}

var runsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete finished job runs older than a cutoff",
	Long: `Delete finished job runs older than a cutoff. Running rows are
never deleted. The cutoff accepts human-readable durations like 30d, 12h
or 1w; it defaults to the configured run retention.`,
	RunE: runRunsPrune,
}

func init() {
	runsListCmd.Flags().IntVar(&runsListLimit, "limit", 20, "number of runs to show")
	runsPruneCmd.Flags().StringVar(&runsPruneOlder, "older-than", "", "age cutoff, e.g. 30d (default: batch.run_retention)")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsPruneCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	runs, err := a.runs.GetRecent(cmd.Context(), runsListLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}

	for _, run := range runs {
		finished := "-"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format(time.RFC3339)
		}
		line := fmt.Sprintf("%s  %-8s  %-9s  written=%-6d  started=%s  finished=%s",
			run.ID, run.JobName, run.Status, run.ItemsWritten,
			run.StartedAt.Format(time.RFC3339), finished)
		if run.Error != "" {
			line += "  error=" + run.Error
		}
		fmt.Println(line)
	}
	return nil
}

func runRunsPrune(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	retention := a.cfg.Batch.RunRetention
	if runsPruneOlder != "" {
		parsed, err := duration.Parse(runsPruneOlder)
		if err != nil {
			return fmt.Errorf("parsing --older-than: %w", err)
		}
		retention = parsed
	}

	deleted, err := a.runs.DeleteOlderThan(cmd.Context(), time.Now().Add(-retention))
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d runs older than %s\n", deleted, duration.Format(retention))
	return nil
}
