package cmd

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"github.com/thesavant42/rvspecs/internal/config"
	"github.com/thesavant42/rvspecs/internal/db"
	"github.com/thesavant42/rvspecs/internal/images"
	"github.com/thesavant42/rvspecs/internal/mapping"
	"github.com/thesavant42/rvspecs/internal/output"
	"github.com/thesavant42/rvspecs/internal/pipeline"
	"github.com/thesavant42/rvspecs/internal/resolver"
	"github.com/thesavant42/rvspecs/internal/scrape"
	"github.com/thesavant42/rvspecs/internal/transform"
	"github.com/thesavant42/rvspecs/internal/ui"
)

var (
	scrapeURLs     []string
	scrapeURLsFile string
	scrapeNoDB     bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes detail pages into per-make JSON files, asking about unknown keys as they appear.",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringSliceVarP(&scrapeURLs, "url", "u", nil, "detail page URL (repeatable)")
	scrapeCmd.Flags().StringVarP(&scrapeURLsFile, "urls-file", "f", "", "JSON array or line list of detail page URLs")
	scrapeCmd.Flags().BoolVar(&scrapeNoDB, "no-db", false, "skip the SQLite index even when database is configured")
	rootCmd.AddCommand(scrapeCmd)
}

func collectURLs() ([]string, error) {
	urls := append([]string{}, cfg.URLs...)
	urls = append(urls, scrapeURLs...)
	if scrapeURLsFile != "" {
		fromFile, err := readURLList(scrapeURLsFile)
		if err != nil {
			return nil, err
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no URLs to scrape: pass --url, --urls-file or set urls in the config")
	}
	return urls, nil
}

// newFetcher builds the configured fetcher; the returned func releases any browser
func newFetcher() (scrape.Fetcher, *resty.Client, func(), error) {
	httpFetcher := scrape.NewHTTPFetcher(cfg.Retries, cfg.Timeout(), logger)
	if cfg.Fetcher != config.FetcherBrowser {
		return httpFetcher, httpFetcher.Client(), func() {}, nil
	}

	bf, err := scrape.NewBrowserFetcher(cfg.WaitSelector, cfg.Timeout(), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return bf, httpFetcher.Client(), func() {
		if err := bf.Close(); err != nil {
			logger.Warn("failed to close browser", "err", err)
		}
	}, nil
}

// backupStores snapshots the files the run may rewrite: domain mappings and learned synonyms
func backupStores() error {
	created, err := mapping.Backup(cfg.BackupDir, cfg.MappingsFile, cfg.SynonymsFile)
	if err != nil {
		return fmt.Errorf("failed to back up mappings and synonyms: %w", err)
	}
	for _, path := range created {
		logger.Info("backed up", "path", path)
	}
	return nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	urls, err := collectURLs()
	if err != nil {
		return err
	}

	if err := backupStores(); err != nil {
		return err
	}

	synonyms, err := mapping.LoadSynonyms(cfg.SynonymsFile)
	if err != nil {
		return err
	}
	prompter := ui.NewPrompter(cfg.Accessible)
	registry, err := mapping.NewRegistry(mapping.NewFileStore(cfg.MappingsFile), prompter, logger)
	if err != nil {
		return err
	}

	logger.Debug("known domains", "domains", registry.Domains())

	fetcher, client, closeFetcher, err := newFetcher()
	if err != nil {
		return err
	}
	defer closeFetcher()

	r := resolver.New(synonyms, prompter, registry, logger)
	converter := images.NewConverter(client, cfg.MagickBin, logger)

	runID := db.NewRunID()
	deps := pipeline.Deps{
		Mappings:    registry,
		Fetcher:     fetcher,
		Extractor:   scrape.NewExtractor(logger),
		Transformer: transform.New(r, converter, cfg.OutputDir, cfg.DefaultYear, logger),
		Writer:      output.NewWriter(cfg.OutputDir),
		RunID:       runID,
		Progress:    ui.PrintProgress,
		Logger:      logger,
	}

	if cfg.Database != "" && !scrapeNoDB {
		database, err := db.New(cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close()
		deps.Sink = database
	}

	logger.Info("starting run", "run", runID, "urls", len(urls), "fetcher", cfg.Fetcher)
	summary, runErr := pipeline.New(deps).Run(cmd.Context(), urls)
	printSummary(summary, runID, deps.Sink != nil)
	return runErr
}

func printSummary(s *pipeline.Summary, runID string, indexed bool) {
	if s == nil {
		return
	}
	fmt.Println()
	ui.PrintSuccess(fmt.Sprintf("Saved %d of %d records", s.Saved, s.Total))
	for _, path := range s.Files {
		fmt.Println(ui.HintStyle.Render("  " + path))
	}
	if len(s.Failures) > 0 {
		ui.PrintWarning(fmt.Sprintf("%d URLs failed:", len(s.Failures)))
		ui.RenderFailures(os.Stdout, s.Failures)
		if indexed {
			fmt.Println(ui.HintStyle.Render("  rvspecs failures " + runID))
		}
	}
}
