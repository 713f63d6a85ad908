package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/rvspecs/internal/mapping"
	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/output"
	"github.com/thesavant42/rvspecs/internal/resolver"
	"github.com/thesavant42/rvspecs/internal/schema"
	"github.com/thesavant42/rvspecs/internal/scrape"
	"github.com/thesavant42/rvspecs/internal/transform"
)

type fakeFetcher struct {
	pages map[string]string
}

func (f fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	html, ok := f.pages[url]
	if !ok {
		return "", errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	return html, nil
}

type memorySink struct {
	records  []models.Record
	failures []models.Failure
}

func (s *memorySink) InsertRecord(_ string, rec models.Record) (string, error) {
	s.records = append(s.records, rec)
	return "id", nil
}

func (s *memorySink) InsertFailure(_ string, f models.Failure) error {
	s.failures = append(s.failures, f)
	return nil
}

const detailPage = `<html><body>
<h1>Imagine</h1>
<table><tbody>
  <tr><td>Dry Weight</td><td>4,915 lbs</td></tr>
  <tr><td>GVWR</td><td>6,995 lbs</td></tr>
  <tr><td>Shower</td><td>Yes</td></tr>
  <tr><td>Stock #</td><td>A1</td></tr>
</tbody></table>
</body></html>`

func grandDesign() *models.DomainMapping {
	return &models.DomainMapping{
		Make:          "Grand Design",
		ModelSelector: models.StringPtr("h1"),
		KeyMappings: map[string]*string{
			"Dry Weight": models.StringPtr(schema.DryWeight),
			"GVWR":       models.StringPtr(schema.GVWR),
			"Shower":     models.StringPtr("Shower"),
			"Stock #":    nil,
		},
	}
}

type harness struct {
	pipeline *Pipeline
	store    *mapping.MemoryStore
	sink     *memorySink
	writer   *output.Writer
	progress []int
}

type abortingPrompter struct{ calls int }

func (p *abortingPrompter) Confirm(string, string) (bool, error) {
	p.calls++
	return false, errors.New("user aborted")
}

func (p *abortingPrompter) Input(string, string, func(string) error) (string, error) {
	p.calls++
	return "", errors.New("user aborted")
}

func newHarness(t *testing.T, pages map[string]string) *harness {
	return newHarnessWithPrompter(t, pages, nil)
}

func newHarnessWithPrompter(t *testing.T, pages map[string]string, prompter resolver.Prompter) *harness {
	t.Helper()
	dir := t.TempDir()

	store := mapping.NewMemoryStore(models.DomainMappings{"granddesignrv": grandDesign()})
	reg, err := mapping.NewRegistry(store, nil, nil)
	require.NoError(t, err)

	r := resolver.New(models.SynonymDictionary{}, prompter, reg, nil)
	h := &harness{
		store:  store,
		sink:   &memorySink{},
		writer: output.NewWriter(dir),
	}
	h.pipeline = New(Deps{
		Mappings:    reg,
		Fetcher:     fakeFetcher{pages: pages},
		Extractor:   scrape.NewExtractor(nil),
		Transformer: transform.New(r, nil, dir, "2024", nil),
		Writer:      h.writer,
		Sink:        h.sink,
		RunID:       "run-1",
		Progress: func(done, total int) {
			h.progress = append(h.progress, done)
		},
	})
	return h
}

func TestRunWritesRecordsAndCollectsFailures(t *testing.T) {
	good := "https://www.granddesignrv.com/travel-trailers/imagine/2500rl"
	alsoGood := "https://www.granddesignrv.com/travel-trailers/imagine/2970rl"
	broken := "https://www.granddesignrv.com/travel-trailers/imagine/gone"

	h := newHarness(t, map[string]string{good: detailPage, alsoGood: detailPage})
	summary, err := h.pipeline.Run(context.Background(), []string{good, broken, "not a url", alsoGood})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 2, summary.Saved)
	require.Len(t, summary.Failures, 2)
	assert.Equal(t, broken, summary.Failures[0].URL)
	assert.Equal(t, StageFetch, summary.Failures[0].Stage)
	assert.Equal(t, StageDomain, summary.Failures[1].Stage)
	assert.Equal(t, []int{1, 4}, h.progress)

	assert.Len(t, h.sink.records, 2)
	assert.Len(t, h.sink.failures, 2)
	assert.GreaterOrEqual(t, h.store.Saves(), 2)

	require.Len(t, summary.Files, 1)
	assert.Equal(t, "grand-design.json", filepath.Base(summary.Files[0]))
	records, err := output.ReadRecords(summary.Files[0])
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024 Grand Design Imagine 2500rl", records[0].String(schema.Name))
	assert.Equal(t, 2080.0, records[0].Get(schema.CCC))
	assert.Equal(t, true, records[1].Get("Shower"))
}

func TestRunPersistFailureIsFatal(t *testing.T) {
	url := "https://www.granddesignrv.com/travel-trailers/imagine/2500rl"
	h := newHarness(t, map[string]string{url: detailPage})
	h.store.FailSave = errors.New("read-only file system")

	summary, err := h.pipeline.Run(context.Background(), []string{url, url})
	require.Error(t, err)
	assert.ErrorIs(t, err, resolver.ErrPersist)
	assert.Zero(t, summary.Saved)

	// files are still closed into valid arrays
	for _, path := range summary.Files {
		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		changed, repairErr := output.RepairBrackets(path)
		require.NoError(t, repairErr)
		assert.False(t, changed, "left broken: %s", data)
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := h.pipeline.Run(ctx, []string{"https://www.granddesignrv.com/a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Processed)
}

func TestRunStopsWhenPromptAborted(t *testing.T) {
	page := strings.Replace(detailPage, "<tr><td>Shower</td>", "<tr><td>Slide Outs</td><td>2</td></tr>\n  <tr><td>Shower</td>", 1)
	urls := []string{
		"https://www.granddesignrv.com/travel-trailers/imagine/2500rl",
		"https://www.granddesignrv.com/travel-trailers/imagine/2970rl",
		"https://www.granddesignrv.com/travel-trailers/imagine/3100rd",
	}
	pages := map[string]string{}
	for _, u := range urls {
		pages[u] = page
	}

	prompter := &abortingPrompter{}
	h := newHarnessWithPrompter(t, pages, prompter)

	summary, err := h.pipeline.Run(context.Background(), urls)
	require.ErrorIs(t, err, resolver.ErrAborted)
	assert.Equal(t, 1, prompter.calls)
	assert.Zero(t, summary.Processed)
	assert.Empty(t, summary.Failures)
	assert.Empty(t, h.sink.failures)
	assert.Equal(t, 1, h.store.Saves())
}
