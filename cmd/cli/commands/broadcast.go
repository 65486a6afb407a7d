package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/team-rota/pkg/core/services"
)

// BroadcastCmd creates the broadcast command
func BroadcastCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "broadcast <sender_id> <title> <message> <member_id>...",
		Short: "Send an admin message to one or more members",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := services.SendBroadcast(app.Ctx, app.Database, app.Logger, args[0], args[1], args[2], args[3:], app.now())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Broadcast sent\n\nNotification ID: %s\n\n", id)
			return nil
		},
	}
}

// DeleteBroadcastCmd creates the deleteBroadcast command
func DeleteBroadcastCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteBroadcast <notification_id>",
		Short: "Delete a broadcast and its deliveries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.DeleteBroadcast(app.Ctx, app.Database, app.Logger, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Broadcast %s deleted\n", args[0])
			return nil
		},
	}
}
