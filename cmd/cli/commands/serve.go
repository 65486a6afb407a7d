package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/team-rota/pkg/api"
	"github.com/jakechorley/team-rota/pkg/core/services"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled retention sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noSweep, _ := cmd.Flags().GetBool("no-sweep")
			migrate, _ := cmd.Flags().GetBool("migrate")

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if migrate {
				if err := app.Migrator.RunMigrations(ctx); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
			}

			server := api.NewServer(app.Database, app.Logger, api.Options{
				Feed:  feedOptions(app.Cfg),
				Sweep: sweepOptions(app.Cfg),
			})

			httpServer := &http.Server{
				Addr:              app.Cfg.ListenAddr,
				Handler:           server.Routes(),
				ReadHeaderTimeout: readHeaderTimeout,
			}

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				app.Logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})

			g.Go(func() error {
				<-gctx.Done()
				app.Logger.Info("Shutting down HTTP server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})

			if !noSweep {
				g.Go(func() error {
					err := services.RunSweepSchedule(gctx, app.Database, app.Logger,
						app.Cfg.Retention.Schedule, sweepOptions(app.Cfg), app.Cfg.Retention.Timeout)
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			app.Logger.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().Bool("no-sweep", false, "Don't run the scheduled retention sweep")
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")

	return cmd
}

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Migrator.RunMigrations(app.Ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Migrations applied\n\n")
			return nil
		},
	}
}
