package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/mimichub-backend/internal/app"
	"github.com/yungbote/mimichub-backend/internal/platform/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mimichub",
	Short: "Catalogue of robot training tasks, subdatasets and episodes",
	Long: `mimichub serves the training-data catalogue API and carries the
maintenance commands that operate on the same database.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default ./config.yaml)")
	rootCmd.Version = app.Version

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tasksCmd)
}

// bootstrap loads config and builds the logger every command shares.
func bootstrap() (app.Config, *logger.Logger, error) {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return app.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return app.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}
