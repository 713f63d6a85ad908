package populate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/schema"
)

const (
	floorPlanInput = "input[name=floor_plan][type=file]"
	textInput      = `input[type="text"]`
	defaultTimeout = time.Minute
)

// Discrepancies lists every key with a value that no form label mentions.
// The result is sorted.
func Discrepancies(rec models.Record, labels []string) []string {
	var missing []string
	for key, value := range rec.Fields {
		if value == nil {
			continue
		}
		found := false
		for _, label := range labels {
			if strings.Contains(label, key) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// FormValue renders a canonical value the way it is typed into a text input
func FormValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return fmt.Sprint(t), true
	}
}

// Result reports what happened to one record
type Result struct {
	URL     string
	Filled  int
	Missing []string
}

// Populator types records into a data-entry form, one tab per record
type Populator struct {
	browser   *rod.Browser
	formURL   string
	imagesDir string
	timeout   time.Duration
	logger    *log.Logger
}

// NewPopulator wraps a connected browser. imagesDir holds floor plan PNGs.
func NewPopulator(browser *rod.Browser, formURL, imagesDir string, logger *log.Logger) *Populator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Populator{
		browser:   browser,
		formURL:   formURL,
		imagesDir: imagesDir,
		timeout:   defaultTimeout,
		logger:    logger,
	}
}

// Login signs in through a username/password form. Empty credentials skip it.
func (p *Populator) Login(ctx context.Context, loginURL, user, password string) error {
	if loginURL == "" || user == "" {
		return nil
	}

	page, err := p.open(ctx, loginURL)
	if err != nil {
		return err
	}

	userField, err := page.Element(`input[type="email"], input[type="text"], input[name="username"]`)
	if err != nil {
		return fmt.Errorf("failed to find username field: %w", err)
	}
	if err := userField.Input(user); err != nil {
		return fmt.Errorf("failed to type username: %w", err)
	}

	passField, err := page.Element(`input[type="password"]`)
	if err != nil {
		return fmt.Errorf("failed to find password field: %w", err)
	}
	if err := passField.Input(password); err != nil {
		return fmt.Errorf("failed to type password: %w", err)
	}
	if err := passField.Type(input.Enter); err != nil {
		return fmt.Errorf("failed to submit login: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load page after login: %w", err)
	}

	p.logger.Info("logged in", "url", loginURL, "user", user)
	return nil
}

func (p *Populator) open(ctx context.Context, url string) (*rod.Page, error) {
	page, err := p.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	page = page.Context(ctx).Timeout(p.timeout)

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	return page, nil
}

type formRow struct {
	row   *rod.Element
	label string
}

func readRows(page *rod.Page) ([]formRow, error) {
	trs, err := page.Elements("tr")
	if err != nil {
		return nil, fmt.Errorf("failed to list form rows: %w", err)
	}

	var rows []formRow
	for _, tr := range trs {
		tds, err := tr.Elements("td")
		if err != nil {
			return nil, fmt.Errorf("failed to list form cells: %w", err)
		}
		for _, td := range tds {
			text, err := td.Text()
			if err != nil {
				continue
			}
			rows = append(rows, formRow{row: tr, label: text})
		}
	}
	return rows, nil
}

// Populate opens the form in a new tab and fills it from rec. The tab stays
// open for visual review.
func (p *Populator) Populate(ctx context.Context, rec models.Record) (*Result, error) {
	page, err := p.open(ctx, p.formURL)
	if err != nil {
		return nil, err
	}

	rows, err := readRows(page)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.label
	}

	result := &Result{
		URL:     rec.String(schema.URL),
		Missing: Discrepancies(rec, labels),
	}
	for _, key := range result.Missing {
		p.logger.Warn("key not found on the form", "key", key, "url", result.URL)
	}

	keys := make([]string, 0, len(rec.Fields))
	for key := range rec.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, ok := FormValue(rec.Fields[key])
		if !ok {
			continue
		}
		row := findRow(rows, key)
		if row == nil {
			continue
		}

		if key == schema.FloorPlan {
			err = p.uploadFloorPlan(row, value)
		} else {
			err = fillText(row, value)
		}
		if err != nil {
			p.logger.Error("failed to fill field", "key", key, "err", err)
			continue
		}
		result.Filled++
	}

	p.logger.Info("populated form", "url", result.URL, "filled", result.Filled, "missing", len(result.Missing))
	return result, nil
}

func findRow(rows []formRow, key string) *rod.Element {
	for _, r := range rows {
		if strings.Contains(r.label, key) {
			return r.row
		}
	}
	return nil
}

func fillText(row *rod.Element, value string) error {
	has, el, err := row.Has(textInput)
	if err != nil {
		return err
	}
	if !has {
		return nil
	}
	return el.Input(value)
}

func (p *Populator) uploadFloorPlan(row *rod.Element, fileName string) error {
	path, err := filepath.Abs(filepath.Join(p.imagesDir, fileName))
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("floor plan file does not exist: %s", path)
	}

	has, el, err := row.Has(floorPlanInput)
	if err != nil {
		return err
	}
	if !has {
		return nil
	}
	return el.SetFiles([]string{path})
}
