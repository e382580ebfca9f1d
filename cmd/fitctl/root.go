package main

import (
	"context"
	"fmt"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var rootCmdPersistentFlags struct {
	Env        string
	ConfigFile string
	LogLevel   string
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.Env, "env", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVarP(&rootCmdPersistentFlags.ConfigFile, "config", "c", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&rootCmdPersistentFlags.LogLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
}

var rootCmd = &cobra.Command{
	Use:   "fitctl",
	Short: "fitctl manages a fittrack database",
	Example: `fitctl migrate --env production -c /etc/fittrack/config.toml
  fitctl admins add coach
  fitctl snapshot --user coach --date 2024-03-06`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Setup(logging.Options{
			Level: logging.GetLevel(rootCmdPersistentFlags.LogLevel),
		})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootCmdPersistentFlags.Env, rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openDB connects to the configured database and brings its schema up to date.
func openDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	secrets, err := config.LoadSecrets(ctx)
	if err != nil {
		return nil, err
	}
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: secrets.PostgresPassword,
		MaxConns:   2,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}
	if err := db.Migrate(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	return dbPool, nil
}
