package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jakechorley/team-rota/pkg/core/services"
)

// SweepCmd creates the sweep command
func SweepCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete schedules older than the retention window",
		Long: `Delete schedules dated before the retention cutoff, together with their members,
availability and substitution requests.

With --watch the sweep runs on the configured schedule until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			asOf, _ := cmd.Flags().GetString("as-of")
			days, _ := cmd.Flags().GetInt("days")

			opts := sweepOptions(app.Cfg)
			if days > 0 {
				opts.RetentionDays = days
			}

			if watch {
				ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				next, err := services.NextSweepAt(app.Cfg.Retention.Schedule, app.now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Watching for sweeps, next at %s\n", next.Format("2006-01-02 15:04 MST"))

				err = services.RunSweepSchedule(ctx, app.Database, app.Logger, app.Cfg.Retention.Schedule, opts, app.Cfg.Retention.Timeout)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			now := app.now()
			if asOf != "" {
				date, err := parseDate(asOf)
				if err != nil {
					return err
				}
				now = date
			}

			result, err := services.RunRetentionSweep(app.Ctx, app.Database, app.Logger, now, opts)
			if err != nil {
				return err
			}

			printSweepResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().Bool("watch", false, "Keep running and sweep on the configured schedule")
	cmd.Flags().String("as-of", "", "Run the sweep as if today were this date (YYYY-MM-DD)")
	cmd.Flags().Int("days", 0, "Override the configured retention days")

	return cmd
}

func printSweepResult(w io.Writer, result *services.SweepResult) {
	fmt.Fprintf(w, "\n✓ Retention sweep completed\n\n")
	fmt.Fprintf(w, "Cutoff:            %s\n", result.Cutoff.Format(dateLayout))
	fmt.Fprintf(w, "Schedules deleted: %d\n", result.DeletedScheduleCount)

	if len(result.DependentFailures) > 0 {
		fmt.Fprintf(w, "\n⚠️  Dependent deletes failed for %d tables:\n", len(result.DependentFailures))
		for _, table := range result.DependentFailures {
			fmt.Fprintf(w, "  ✗ %s\n", table)
		}
	}
	fmt.Fprintln(w)
}
