package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/yungbote/mimichub-backend/internal/app"
	repos "github.com/yungbote/mimichub-backend/internal/data/repos/catalog"
	"github.com/yungbote/mimichub-backend/internal/platform/dbctx"
)

var (
	tasksStatus   string
	tasksExternal string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect catalogue tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every task with its variants as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := repos.TaskFilter{Page: repos.All}
		if tasksStatus != "" {
			f.Status = &tasksStatus
		}
		switch tasksExternal {
		case "":
		case "true":
			v := true
			f.IsExternal = &v
		case "false":
			v := false
			f.IsExternal = &v
		default:
			return errInvalidExternal
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

		rows, err := a.Services.Tasks.ListTasks(dbctx.Context{Ctx: cmd.Context()}, f)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	},
}

func init() {
	tasksListCmd.Flags().StringVar(&tasksStatus, "status", "", "only tasks with this status")
	tasksListCmd.Flags().StringVar(&tasksExternal, "external", "", "filter on is_external (true|false)")
	tasksCmd.AddCommand(tasksListCmd)
}
