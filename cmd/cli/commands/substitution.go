package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/pkg/core/services"
)

// RequestSubstitutionCmd creates the requestSubstitution command
func RequestSubstitutionCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "requestSubstitution <requesting_member_id> <substitute_member_id> <schedule_id>",
		Short: "Ask another member to cover a schedule",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := services.CreateSubstitutionRequest(app.Ctx, app.Database, app.Logger, args[0], args[1], args[2], app.now())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Substitution request created\n\nRequest ID: %s\n\n", id)
			return nil
		},
	}
}

// PendingSubstitutionsCmd creates the pendingSubstitutions command
func PendingSubstitutionsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pendingSubstitutions <member_id>",
		Short: "List substitution requests awaiting the member's answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := services.RequestsAwaitingResponse(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(requests) == 0 {
				fmt.Fprintln(w, "No pending substitution requests.")
				return nil
			}

			fmt.Fprintf(w, "\n%d pending substitution requests:\n\n", len(requests))
			for _, r := range requests {
				date := "unknown date"
				if r.ScheduleDate != nil {
					date = r.ScheduleDate.Format(dateLayout)
				}
				fmt.Fprintf(w, "  %s  %s on %s, from %s\n", r.ID, r.ScheduleTitle, date, r.RequestingMemberName)
			}
			fmt.Fprintln(w)
			return nil
		},
	}
}

// ResolveSubstitutionCmd creates the resolveSubstitution command
func ResolveSubstitutionCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolveSubstitution <request_id> <accept|reject>",
		Short: "Accept or reject a pending substitution request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reassign, _ := cmd.Flags().GetBool("reassign")

			accept, err := parseDecision(args[1])
			if err != nil {
				return err
			}

			resolved, err := services.ResolveSubstitutionRequest(app.Ctx, app.Database, app.Logger, args[0], accept, app.now())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✓ Request %s %s\n", resolved.ID, resolved.Status)

			if accept && reassign {
				if err := services.ReassignScheduleMember(app.Ctx, app.Database, app.Logger, resolved.ID); err != nil {
					app.Logger.Warn("Substitution accepted but roster not reassigned",
						zap.String("request_id", resolved.ID),
						zap.Error(err))
					return fmt.Errorf("request accepted but roster not reassigned: %w", err)
				}
				fmt.Fprintf(w, "✓ Schedule %s reassigned to %s\n", resolved.ScheduleID, resolved.SubstituteMemberID)
			}
			return nil
		},
	}

	cmd.Flags().Bool("reassign", false, "Move the roster slot to the substitute once accepted")

	return cmd
}
