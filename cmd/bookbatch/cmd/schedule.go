package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/inkwhale/bookbatch/internal/batch"
)

// scheduleCmd runs the configured jobs on their cron schedules until
// interrupted.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run jobs on their configured cron schedules",
	Long: `Run jobs on their configured cron schedules until interrupted.

Schedules come from the schedule.jobs config map, one cron expression per
catalog job name:

  schedule:
    jobs:
      nlgo:   "0 2 * * *"
      naver:  "30 2 * * *"
      series: "0 4 * * *"`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(a.cfg.Schedule.Jobs) == 0 {
		return fmt.Errorf("no schedules configured: set schedule.jobs in the config")
	}

	// Overlapping runs of the same catalog would race on the same tables;
	// SkipIfStillRunning drops a tick while the previous one is active.
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for name, spec := range a.cfg.Schedule.Jobs {
		known := false
		for _, candidate := range JobNames {
			if candidate == name {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("schedule.jobs: unknown job %q", name)
		}

		name := name
		entryID, err := c.AddFunc(spec, func() {
			if _, err := a.runJob(ctx, name, batch.JobParameter{}); err != nil {
				a.logger.Error("scheduled run failed",
					slog.String("job", name),
					slog.String("error", err.Error()),
				)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule.jobs: invalid cron expression for %q: %w", name, err)
		}

		a.logger.Info("job scheduled",
			slog.String("job", name),
			slog.String("cron", spec),
			slog.Int("entry", int(entryID)),
		)
	}

	c.Start()
	a.logger.Info("scheduler started", slog.Int("jobs", len(a.cfg.Schedule.Jobs)))

	<-ctx.Done()
	a.logger.Info("shutting down scheduler")

	// Let an in-flight run finish before the database closes.
	<-c.Stop().Done()
	return nil
}
