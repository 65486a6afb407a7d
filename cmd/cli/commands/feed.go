package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jakechorley/team-rota/pkg/core/model"
	"github.com/jakechorley/team-rota/pkg/core/services"
)

// FeedCmd creates the feed command
func FeedCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "feed <member_id>",
		Short: "Show a member's notification feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.GetNotificationFeed(app.Ctx, app.Database, app.Logger, args[0], app.now(), feedOptions(app.Cfg))
			if err != nil {
				return err
			}

			app.feed = result.Items
			printFeed(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func printFeed(w io.Writer, result *services.FeedResult) {
	if len(result.Items) == 0 {
		fmt.Fprintln(w, "No notifications.")
	} else {
		fmt.Fprintf(w, "\n%d notifications:\n\n", len(result.Items))
		for _, n := range result.Items {
			fmt.Fprintf(w, "  %s %s\n", kindMarker(n.Kind), n.Title)
			if n.Description != "" {
				fmt.Fprintf(w, "      %s\n", n.Description)
			}
			if n.RecipientID != "" {
				fmt.Fprintf(w, "      recipient: %s\n", n.RecipientID)
			}
		}
	}

	if len(result.FailedSources) > 0 {
		fmt.Fprintf(w, "\n⚠️  Could not load: %v\n", result.FailedSources)
	}
	fmt.Fprintln(w)
}

func kindMarker(kind model.NotificationKind) string {
	switch kind {
	case model.KindAdminMessage:
		return "[admin]"
	case model.KindSubstitutionRequest:
		return "[swap] "
	case model.KindPendingConfirmation:
		return "[todo] "
	case model.KindUpcomingSchedule:
		return "[soon] "
	}
	return "[?]    "
}

// MarkReadCmd creates the markRead command
func MarkReadCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "markRead <recipient_id>",
		Short: "Mark an admin message read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.MarkAdminMessageRead(app.Ctx, app.Database, app.Logger, args[0], app.now()); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Marked %s read\n", args[0])

			if app.feed != nil {
				app.feed = app.feed.WithoutRecipient(args[0])
				fmt.Fprintf(w, "%d notifications left in feed\n", len(app.feed))
			}
			return nil
		},
	}
}

// PendingConfirmationsCmd creates the pendingConfirmations command
func PendingConfirmationsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pendingConfirmations <member_id>",
		Short: "List upcoming schedules the member has not confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pending, err := services.PendingConfirmations(app.Ctx, app.Database, app.Logger, args[0], app.Cfg.Feed.HorizonDays, app.now())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(pending) == 0 {
				fmt.Fprintln(w, "Nothing to confirm.")
				return nil
			}

			fmt.Fprintf(w, "\n%d schedules awaiting confirmation:\n\n", len(pending))
			for _, us := range pending {
				fmt.Fprintf(w, "  %s  %-30s in %d days  (%s)\n",
					us.Schedule.ScheduleDate.Format(dateLayout), us.Schedule.Title, us.DaysUntil, us.Schedule.ID)
			}
			fmt.Fprintln(w)
			return nil
		},
	}
}

// ConfirmAvailabilityCmd creates the confirmAvailability command
func ConfirmAvailabilityCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirmAvailability <member_id> <schedule_id> <yes|no>",
		Short: "Record a member's availability for a schedule",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			available, err := parseAvailable(args[2])
			if err != nil {
				return err
			}

			if err := services.ConfirmAvailability(app.Ctx, app.Database, app.Logger, args[0], args[1], available, app.now()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Availability recorded (available: %t)\n", available)
			return nil
		},
	}
}
