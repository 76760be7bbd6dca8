package commands

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/mimichub-backend/internal/app"
	"github.com/yungbote/mimichub-backend/internal/data/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalogue schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		gdb, err := app.OpenDB(cfg, log, nil)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := db.AutoMigrateAll(gdb, cfg.DB.Schema); err != nil {
			return err
		}
		log.Info("Schema migrated", "driver", cfg.DB.Driver, "schema", cfg.DB.Schema)
		return nil
	},
}
