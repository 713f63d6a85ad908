package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thesavant42/rvspecs/internal/db"
	"github.com/thesavant42/rvspecs/internal/output"
	"github.com/thesavant42/rvspecs/internal/ui"
)

var indexCmd = &cobra.Command{
	Use:   "index [output files...]",
	Short: "Imports per-make JSON files into the SQLite database and prints per-make counts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database == "" {
			return fmt.Errorf("database is not configured")
		}
		files, err := outputFiles(args)
		if err != nil {
			return err
		}

		database, err := db.New(cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close()

		runID := db.NewRunID()
		for _, file := range files {
			records, err := output.ReadRecords(file)
			if err != nil {
				return err
			}
			ids, err := database.InsertRecords(runID, records)
			if err != nil {
				return err
			}
			logger.Info("indexed file", "path", file, "records", len(ids))
		}

		counts, err := database.GetMakeCounts()
		if err != nil {
			return err
		}
		rows := make([]ui.MakeCount, len(counts))
		for i, c := range counts {
			rows[i] = ui.MakeCount{Make: c.Make, Count: c.Count}
		}
		ui.RenderMakeCounts(os.Stdout, rows)

		total, err := database.CountRecords()
		if err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("%d records indexed in total", total))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
