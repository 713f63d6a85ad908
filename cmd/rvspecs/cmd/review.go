package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thesavant42/rvspecs/internal/db"
	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/output"
	"github.com/thesavant42/rvspecs/internal/schema"
	"github.com/thesavant42/rvspecs/internal/ui"
)

var reviewMake string

var reviewCmd = &cobra.Command{
	Use:   "review [output files...]",
	Short: "Browses scraped records and the fields flagged for manual verification.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var records []models.Record
		var err error
		if reviewMake != "" {
			records, err = indexedRecords(reviewMake)
		} else {
			records, err = fileRecords(args)
		}
		if err != nil {
			return err
		}
		return ui.RunReview(reviewItems(records))
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewMake, "make", "", "review one make from the SQLite index instead of output files")
	rootCmd.AddCommand(reviewCmd)
}

func fileRecords(args []string) ([]models.Record, error) {
	files, err := outputFiles(args)
	if err != nil {
		return nil, err
	}
	var records []models.Record
	for _, file := range files {
		recs, err := output.ReadRecords(file)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func indexedRecords(makeName string) ([]models.Record, error) {
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is not configured")
	}
	database, err := db.New(cfg.Database)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	stored, err := database.GetRecordsByMake(makeName)
	if err != nil {
		return nil, err
	}
	records := make([]models.Record, len(stored))
	for i, s := range stored {
		records[i] = s.Record
	}
	return records, nil
}

func reviewItems(records []models.Record) []ui.ReviewItem {
	items := make([]ui.ReviewItem, 0, len(records))
	for _, rec := range records {
		items = append(items, ui.ReviewItem{
			Make:   rec.String(schema.Make),
			Name:   rec.String(schema.Name),
			URL:    rec.String(schema.URL),
			Verify: rec.VerifyManually,
		})
	}
	return items
}
