package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/rvspecs/internal/mapping"
	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/output"
	"github.com/thesavant42/rvspecs/internal/scrape"
	"github.com/thesavant42/rvspecs/internal/transform"
)

// Stages recorded for per-URL failures the pipeline detects itself
const (
	StageDomain  = "domain"
	StageFetch   = "fetch"
	StageExtract = "extract"
)

// Mappings hands out the domain mapping for a site and saves the collection
type Mappings interface {
	GetOrCreate(sld string) (*models.DomainMapping, error)
	Persist() error
}

// PageExtractor turns fetched HTML into a raw page
type PageExtractor interface {
	Extract(pageURL, html string, dm *models.DomainMapping) (models.Page, error)
}

// RecordTransformer turns a raw page into a canonical record
type RecordTransformer interface {
	Transform(ctx context.Context, page models.Page, dm *models.DomainMapping) (models.Record, error)
}

// RecordSink receives every written record and failure (the SQLite index)
type RecordSink interface {
	InsertRecord(runID string, rec models.Record) (string, error)
	InsertFailure(runID string, f models.Failure) error
}

// Deps wires the pipeline's collaborators. Sink and Progress are optional.
type Deps struct {
	Mappings    Mappings
	Fetcher     scrape.Fetcher
	Extractor   PageExtractor
	Transformer RecordTransformer
	Writer      *output.Writer
	Sink        RecordSink
	RunID       string
	Progress    func(done, total int)
	Logger      *log.Logger
}

// Summary describes a finished run
type Summary struct {
	RunID     string
	Total     int
	Processed int
	Saved     int
	Files     []string
	Failures  []models.Failure
}

// Pipeline processes detail-page URLs one at a time
type Pipeline struct {
	deps   Deps
	logger *log.Logger
}

// New creates a pipeline
func New(deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pipeline{deps: deps, logger: logger}
}

// Run scrapes, transforms and writes every URL in order. Per-URL problems are
// collected in the summary; storage errors stop the run. Output files are
// closed and repaired before Run returns.
func (p *Pipeline) Run(ctx context.Context, urls []string) (summary *Summary, err error) {
	summary = &Summary{RunID: p.deps.RunID, Total: len(urls)}

	defer func() {
		summary.Files = p.deps.Writer.Paths()
		if closeErr := p.finish(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	for i, pageURL := range urls {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		saved, failure, err := p.process(ctx, pageURL)
		if err != nil {
			return summary, err
		}
		summary.Processed++

		if failure != nil {
			p.logger.Error("record failed", "url", failure.URL, "stage", failure.Stage, "err", failure.Err)
			summary.Failures = append(summary.Failures, *failure)
			if p.deps.Sink != nil {
				if err := p.deps.Sink.InsertFailure(p.deps.RunID, *failure); err != nil {
					return summary, fmt.Errorf("failed to record failure: %w", err)
				}
			}
			continue
		}

		if saved {
			summary.Saved++
		}
		if p.deps.Progress != nil {
			p.deps.Progress(i+1, len(urls))
		}
	}

	if err := p.deps.Mappings.Persist(); err != nil {
		return summary, err
	}
	return summary, nil
}

// process handles one URL. A non-nil failure skips the record; a non-nil
// error stops the run.
func (p *Pipeline) process(ctx context.Context, pageURL string) (bool, *models.Failure, error) {
	fail := func(stage string, err error) (bool, *models.Failure, error) {
		return false, &models.Failure{URL: pageURL, Stage: stage, Err: err.Error()}, nil
	}

	sld, err := mapping.SecondLevelDomain(pageURL)
	if err != nil {
		return fail(StageDomain, err)
	}

	dm, err := p.deps.Mappings.GetOrCreate(sld)
	if err != nil {
		return false, nil, fmt.Errorf("failed to get domain mapping for %s: %w", sld, err)
	}

	html, err := p.deps.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return fail(StageFetch, err)
	}

	page, err := p.deps.Extractor.Extract(pageURL, html, dm)
	if err != nil {
		return fail(StageExtract, err)
	}

	rec, err := p.deps.Transformer.Transform(ctx, page, dm)
	if err != nil {
		var recErr *transform.RecordError
		if errors.As(err, &recErr) {
			f := recErr.Failure()
			return false, &f, nil
		}
		return false, nil, err
	}

	if err := p.deps.Writer.Append(rec); err != nil {
		return false, nil, fmt.Errorf("failed to write record for %s: %w", pageURL, err)
	}
	if p.deps.Sink != nil {
		if _, err := p.deps.Sink.InsertRecord(p.deps.RunID, rec); err != nil {
			return false, nil, fmt.Errorf("failed to index record for %s: %w", pageURL, err)
		}
	}
	if err := p.deps.Mappings.Persist(); err != nil {
		return false, nil, err
	}

	p.logger.Debug("saved record", "url", pageURL, "verify", len(rec.VerifyManually))
	return true, nil, nil
}

// finish closes the output files and repairs any left unterminated
func (p *Pipeline) finish() error {
	paths := p.deps.Writer.Paths()
	err := p.deps.Writer.Close()

	for _, path := range paths {
		changed, repairErr := output.RepairBrackets(path)
		if repairErr != nil {
			err = errors.Join(err, repairErr)
			continue
		}
		if changed {
			p.logger.Warn("repaired output file", "path", path)
		}
	}
	return err
}
