package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/thesavant42/rvspecs/internal/config"
	"github.com/thesavant42/rvspecs/internal/images"
	"github.com/thesavant42/rvspecs/internal/output"
	"github.com/thesavant42/rvspecs/internal/populate"
	"github.com/thesavant42/rvspecs/internal/schema"
	"github.com/thesavant42/rvspecs/internal/scrape"
	"github.com/thesavant42/rvspecs/internal/ui"
)

var populateCmd = &cobra.Command{
	Use:   "populate [output files...]",
	Short: "Types scraped records into the data-entry form, one browser tab per record.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Form.URL == "" {
			return fmt.Errorf("form.url is not configured")
		}
		files, err := outputFiles(args)
		if err != nil {
			return err
		}

		browser, err := scrape.LaunchBrowser(cfg.Form.Headless)
		if err != nil {
			return err
		}
		defer browser.Close()

		p := populate.NewPopulator(browser, cfg.Form.URL, filepath.Join(cfg.OutputDir, images.SubDir), logger)
		user, password := config.FormCredentials()
		if err := p.Login(cmd.Context(), cfg.Form.LoginURL, user, password); err != nil {
			return err
		}

		t := ui.NewTable(os.Stdout)
		t.AppendHeader(table.Row{"Record", "Filled", "Not on form"})
		for _, file := range files {
			records, err := output.ReadRecords(file)
			if err != nil {
				return err
			}
			for _, rec := range records {
				res, err := p.Populate(cmd.Context(), rec)
				if err != nil {
					logger.Error("failed to populate record", "url", rec.String(schema.URL), "err", err)
					t.AppendRow(table.Row{rec.String(schema.Name), "-", err.Error()})
					continue
				}
				t.AppendRow(table.Row{rec.String(schema.Name), res.Filled, strings.Join(res.Missing, ", ")})
			}
		}
		t.Render()

		_, err = ui.NewPrompter(cfg.Accessible).Confirm("Close the browser?", "Tabs stay open until you confirm")
		return err
	},
}

func init() {
	rootCmd.AddCommand(populateCmd)
}
