package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thesavant42/rvspecs/internal/db"
	"github.com/thesavant42/rvspecs/internal/ui"
)

var failuresCmd = &cobra.Command{
	Use:   "failures RUN_ID",
	Short: "Lists the URLs that failed during an indexed scrape run.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database == "" {
			return fmt.Errorf("database is not configured")
		}
		database, err := db.New(cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close()

		failures, err := database.GetFailures(args[0])
		if err != nil {
			return err
		}
		if len(failures) == 0 {
			ui.PrintSuccess(fmt.Sprintf("No failures recorded for run %s", args[0]))
			return nil
		}
		ui.RenderFailures(os.Stdout, failures)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(failuresCmd)
}
