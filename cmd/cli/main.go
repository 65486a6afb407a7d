package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/cmd/cli/commands"
	"github.com/jakechorley/team-rota/internal/config"
	"github.com/jakechorley/team-rota/pkg/postgres"
	"github.com/jakechorley/team-rota/pkg/utils/logging"
)

var (
	env      string
	jsonLogs bool
	app      = &commands.AppContext{Ctx: context.Background()}
	closeDB  func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rota",
		Short: "Team rota CLI - Serve and operate the team rota backend",
		Long:  `A CLI for running the team rota API, notification feed, substitution workflow and retention sweep.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if closeDB != nil {
				closeDB()
			}
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: dev, staging, prod, etc.)")
	_ = rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write console logs as JSON")

	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.SweepCmd(app))
	rootCmd.AddCommand(commands.FeedCmd(app))
	rootCmd.AddCommand(commands.MarkReadCmd(app))
	rootCmd.AddCommand(commands.PendingConfirmationsCmd(app))
	rootCmd.AddCommand(commands.ConfirmAvailabilityCmd(app))
	rootCmd.AddCommand(commands.RequestSubstitutionCmd(app))
	rootCmd.AddCommand(commands.PendingSubstitutionsCmd(app))
	rootCmd.AddCommand(commands.ResolveSubstitutionCmd(app))
	rootCmd.AddCommand(commands.BroadcastCmd(app))
	rootCmd.AddCommand(commands.DeleteBroadcastCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads config, sets up the logger and connects to the database
func initApp() error {
	var err error

	app.Cfg, err = config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var logPath string
	app.Logger, logPath, err = logging.InitLogger(env, logging.Options{
		Dir:          app.Cfg.Logging.Dir,
		ConsoleLevel: app.Cfg.Logging.ConsoleLevel,
		FileLevel:    app.Cfg.Logging.FileLevel,
		JSONConsole:  jsonLogs,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env), zap.String("log_file", logPath))

	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns:          app.Cfg.Pool.MaxConns,
		MinConns:          app.Cfg.Pool.MinConns,
		MaxConnLifetime:   app.Cfg.Pool.MaxConnLifetime,
		MaxConnIdleTime:   app.Cfg.Pool.MaxConnIdleTime,
		HealthCheckPeriod: app.Cfg.Pool.HealthCheckPeriod,
	}, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Database = database
	app.Migrator = database
	closeDB = database.Close

	app.Logger.Info("Database initialized successfully")

	return nil
}
