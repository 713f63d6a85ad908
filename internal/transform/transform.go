package transform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/rvspecs/internal/convert"
	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/resolver"
	"github.com/thesavant42/rvspecs/internal/schema"
)

// Stages reported in RecordError
const (
	StageResolve  = "resolve"
	StageIdentity = "identity"
)

// KeyResolver renames a raw record's keys to canonical ones
type KeyResolver interface {
	ResolveRecord(dm *models.DomainMapping, raw models.RawRecord) (models.CanonicalRecord, error)
}

// ImageConverter saves a remote image as PNG and returns its path
type ImageConverter interface {
	Convert(ctx context.Context, srcURL, baseName, outDir string) (string, error)
}

// RecordError aborts one record; the run continues with the next URL
type RecordError struct {
	URL   string
	Stage string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %s failed during %s: %v", e.URL, e.Stage, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Failure converts the error to a failure-list entry
func (e *RecordError) Failure() models.Failure {
	return models.Failure{URL: e.URL, Stage: e.Stage, Err: e.Err.Error()}
}

// Transformer turns extracted pages into complete canonical records
type Transformer struct {
	resolver    KeyResolver
	images      ImageConverter
	outDir      string
	defaultYear string
	logger      *log.Logger
}

// New creates a transformer. images may be nil to skip floor plan downloads.
func New(r KeyResolver, images ImageConverter, outDir, defaultYear string, logger *log.Logger) *Transformer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Transformer{
		resolver:    r,
		images:      images,
		outDir:      outDir,
		defaultYear: defaultYear,
		logger:      logger,
	}
}

var whitespace = regexp.MustCompile(`\s`)

// Transform builds one record. A *RecordError means only this record is lost;
// any other error (persistence, aborted prompt, schema drift) must stop the run.
func (t *Transformer) Transform(ctx context.Context, page models.Page, dm *models.DomainMapping) (models.Record, error) {
	fields, err := t.resolver.ResolveRecord(dm, page.Raw)
	if err != nil {
		if errors.Is(err, resolver.ErrPersist) || errors.Is(err, resolver.ErrAborted) {
			return models.Record{}, err
		}
		return models.Record{}, &RecordError{URL: page.URL, Stage: StageResolve, Err: err}
	}

	if err := t.setIdentity(fields, page, dm); err != nil {
		return models.Record{}, &RecordError{URL: page.URL, Stage: StageIdentity, Err: err}
	}

	t.floorPlan(ctx, fields, page)
	t.splitAwning(fields)

	if err := convert.AddMissingGvwrUvwCcc(fields); err != nil {
		t.logger.Warn("could not derive weights", "url", page.URL, "err", err)
	}

	t.tireCode(fields, page.URL)

	rec, err := t.format(fields, page.URL)
	if err != nil {
		return models.Record{}, err
	}
	return rec, nil
}

// setIdentity fills URL, Year, Make, Type, Model, Trim and Name
func (t *Transformer) setIdentity(fields models.CanonicalRecord, page models.Page, dm *models.DomainMapping) error {
	fields[schema.URL] = page.URL

	year := yearText(page.Year)
	if year == "" && page.Year != "" {
		t.logger.Warn("year selector returned no number", "url", page.URL, "year", page.Year)
	}
	if year == "" {
		year = firstNonEmpty(yearText(t.defaultYear), yearText(textOf(fields[schema.Year])))
	}
	fields[schema.Year] = nilIfEmpty(year)

	makeName := firstNonEmpty(dm.Make, page.Make, textOf(fields[schema.Make]))
	if makeName == "" {
		return errors.New("no make configured for domain")
	}
	fields[schema.Make] = makeName

	if page.Type != "" {
		fields[schema.Type] = page.Type
	} else {
		rvType, ok, err := convert.RVTypeFromURL(page.URL)
		if err != nil {
			return err
		}
		if ok {
			fields[schema.Type] = rvType
		} else if textOf(fields[schema.Type]) == "" {
			t.logger.Debug("could not infer type from URL", "url", page.URL)
		}
	}

	model := firstNonEmpty(page.Model, textOf(fields[schema.Model]))
	fields[schema.Model] = nilIfEmpty(model)

	trim := firstNonEmpty(page.Trim, textOf(fields[schema.Trim]))
	if trim == "" {
		segment, err := convert.LastURLSegment(page.URL)
		if err != nil {
			return err
		}
		trim = segment
	}
	fields[schema.Trim] = nilIfEmpty(trim)

	if page.Description != "" {
		fields[schema.Description] = page.Description
	}
	if page.WebFeatures != "" {
		fields[schema.WebFeatures] = page.WebFeatures
	}

	fields[schema.Name] = fmt.Sprintf("%s %s %s %s", year, makeName, model, trim)
	return nil
}

// yearText reduces scraped year text to its leading number ("2025 Model Year" -> "2025")
func yearText(s string) string {
	f, ok, err := convert.ParseNumeric(s)
	if err != nil || !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// fileSafe keeps a floor plan base name inside the images directory
var fileSafe = strings.NewReplacer("/", "_", "\\", "_")

func (t *Transformer) floorPlan(ctx context.Context, fields models.CanonicalRecord, page models.Page) {
	fields[schema.FloorPlan] = nil
	if page.ImageURL == "" || t.images == nil {
		t.logger.Info("no floor plan image", "url", page.URL)
		return
	}

	baseName := fileSafe.Replace(whitespace.ReplaceAllString(textOf(fields[schema.Model]), "_") + "__" + textOf(fields[schema.Trim]))
	saved, err := t.images.Convert(ctx, page.ImageURL, baseName, t.outDir)
	if err != nil {
		t.logger.Warn("floor plan download failed", "url", page.URL, "image", page.ImageURL, "err", err)
		return
	}
	fields[schema.FloorPlan] = filepath.Base(saved)
}

func (t *Transformer) splitAwning(fields models.CanonicalRecord) {
	raw, ok := fields[schema.AwningLength].(string)
	if !ok || raw == "" {
		return
	}
	if split := convert.SplitAwningMeasurements(raw); split != "" {
		fields[schema.AwningLength] = split
	}
}

func (t *Transformer) tireCode(fields models.CanonicalRecord, url string) {
	code := textOf(fields[schema.TireCode])
	if code == "" {
		return
	}
	tire := convert.ParseTireCode(code)
	if !tire.Valid() {
		t.logger.Warn("invalid tire code format", "url", url, "tire_code", code)
		return
	}
	fields[schema.RearTireDiameter] = *tire.TireDiameterIn
	fields[schema.RearWheelDiameter] = *tire.WheelDiameterIn
}

// format converts every value to its unit and fills absent schema keys with nil
func (t *Transformer) format(fields models.CanonicalRecord, url string) (models.Record, error) {
	out := make(models.CanonicalRecord, schema.Len())
	for _, k := range schema.Keys() {
		out[k] = nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, err := convert.FormatValue(k, fields[k])
		if err != nil {
			var unknown *convert.UnknownFormatTypeError
			if errors.As(err, &unknown) {
				return models.Record{}, err
			}
			t.logger.Warn("could not convert field", "url", url, "key", k, "value", fields[k], "err", err)
			v = nil
		}
		out[k] = v
	}

	var verify []string
	for _, k := range schema.Keys() {
		if out[k] == nil {
			verify = append(verify, k)
		}
	}
	return models.Record{Fields: out, VerifyManually: verify}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func textOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	default:
		return fmt.Sprint(v)
	}
}
