package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/mimichub-backend/internal/app"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
	"github.com/yungbote/mimichub-backend/internal/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load reference data, items, tasks and subdatasets from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		seed, err := services.ParseSeedFile(f)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		rep, err := a.Services.Seeder.Apply(dbctx.Context{Ctx: cmd.Context()}, seed)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	},
}
