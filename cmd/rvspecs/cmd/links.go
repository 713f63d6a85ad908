package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thesavant42/rvspecs/internal/links"
	"github.com/thesavant42/rvspecs/internal/scrape"
	"github.com/thesavant42/rvspecs/internal/ui"
)

var linksOut string

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Collects detail page URLs from the listing pages configured under links.groups.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Links.Groups) == 0 {
			return fmt.Errorf("no link groups configured")
		}

		fetcher := scrape.NewHTTPFetcher(cfg.Retries, cfg.Timeout(), logger)
		d := links.NewDiscoverer(fetcher, cfg.Links.Concurrency, cfg.Links.Rate, logger)

		var urls []string
		var findErr error
		err := ui.RunWithSpinner("Collecting detail page links...", func() {
			urls, findErr = d.Discover(cmd.Context(), cfg.Links.Groups)
		})
		if err != nil {
			return err
		}
		if findErr != nil {
			return findErr
		}

		data, err := json.MarshalIndent(urls, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode links: %w", err)
		}
		if err := os.WriteFile(linksOut, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", linksOut, err)
		}

		ui.PrintSuccess(fmt.Sprintf("Found %d links, saved to %s", len(urls), linksOut))
		return nil
	},
}

func init() {
	linksCmd.Flags().StringVarP(&linksOut, "out", "o", "links.json", "file the collected URLs are written to")
	rootCmd.AddCommand(linksCmd)
}
