package scrape

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/thesavant42/rvspecs/internal/models"
)

// DefaultRowSelector is used when a mapping has no rowSelector
const DefaultRowSelector = "tbody tr"

// =============================================================================
// Named extractors
// =============================================================================

// ExtractFunc pulls a value out of a document, optionally scoped by selector
type ExtractFunc func(doc *goquery.Document, selector string) string

// Extractors are referenced by name from a domain mapping's *Extractor fields
var Extractors = map[string]ExtractFunc{
	"text":              extractText,
	"first-heading":     extractFirstHeading,
	"title-before-dash": extractTitleBeforeDash,
	"list-items":        extractListItems,
	"meta-description":  extractMetaDescription,
	"og-image":          extractOGImage,
}

// HasExtractor reports whether name is registered
func HasExtractor(name string) bool {
	_, ok := Extractors[name]
	return ok
}

// ExtractorNames lists the registered extractors, sorted
func ExtractorNames() []string {
	names := make([]string, 0, len(Extractors))
	for n := range Extractors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func extractText(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	return cleanText(doc.Find(selector).First().Text())
}

func extractFirstHeading(doc *goquery.Document, selector string) string {
	scope := doc.Selection
	if selector != "" {
		scope = doc.Find(selector)
	}
	return cleanText(scope.Find("h1, h2").First().Text())
}

func extractTitleBeforeDash(doc *goquery.Document, _ string) string {
	title := cleanText(doc.Find("title").First().Text())
	for _, sep := range []string{" | ", " - ", " – "} {
		if i := strings.Index(title, sep); i > 0 {
			return strings.TrimSpace(title[:i])
		}
	}
	return title
}

func extractListItems(doc *goquery.Document, selector string) string {
	var items []string
	doc.Find(selector).Find("li").Each(func(_ int, s *goquery.Selection) {
		if t := cleanText(s.Text()); t != "" {
			items = append(items, t)
		}
	})
	return strings.Join(items, "; ")
}

func extractMetaDescription(doc *goquery.Document, _ string) string {
	v, _ := doc.Find(`meta[name="description"]`).Attr("content")
	return cleanText(v)
}

func extractOGImage(doc *goquery.Document, _ string) string {
	v, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	return strings.TrimSpace(v)
}

// =============================================================================
// Page extraction
// =============================================================================

// Extractor turns page HTML into a Page using a domain mapping
type Extractor struct {
	logger *log.Logger
}

// NewExtractor creates an extractor
func NewExtractor(logger *log.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract reads the spec table and the identity selectors from html
func (e *Extractor) Extract(pageURL, html string, dm *models.DomainMapping) (models.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.Page{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := models.Page{
		URL: pageURL,
		Raw: make(models.RawRecord),
	}

	rowSel := DefaultRowSelector
	if dm.RowSelector != nil && *dm.RowSelector != "" {
		rowSel = *dm.RowSelector
	}
	doc.Find(rowSel).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		e.put(page.Raw, cells.Eq(0).Text(), cells.Eq(1).Text())
	})

	if dm.DLSelector != nil {
		doc.Find(*dm.DLSelector).Each(func(_ int, dl *goquery.Selection) {
			dl.Find("dt").Each(func(_ int, dt *goquery.Selection) {
				e.put(page.Raw, dt.Text(), dt.NextFiltered("dd").Text())
			})
		})
	}

	if dm.OptionsSelector != nil {
		doc.Find(*dm.OptionsSelector).Each(func(_ int, item *goquery.Selection) {
			e.put(page.Raw, item.Text(), "Yes")
		})
	}

	page.Make = selectText(doc, dm.MakeSelector)
	page.Year = selectText(doc, dm.YearSelector)
	page.Type = selectText(doc, dm.TypeSelector)
	page.Model = e.extractNamed(doc, dm.ModelExtractor, dm.ModelSelector)
	page.Trim = selectText(doc, dm.TrimSelector)
	page.Description = selectText(doc, dm.DescriptionSelector)
	page.WebFeatures = e.extractNamed(doc, dm.WebFeaturesExtractor, dm.WebFeaturesSelector)

	if dm.ImageSelector != nil {
		page.ImageURL = imageSource(doc, *dm.ImageSelector, pageURL)
	}

	if e.logger != nil {
		e.logger.Debug("extracted page", "url", pageURL, "keys", len(page.Raw), "model", page.Model)
	}
	return page, nil
}

// put adds a key/value pair; the first occurrence of a key wins
func (e *Extractor) put(raw models.RawRecord, key, value string) {
	key = strings.TrimSuffix(cleanText(key), ":")
	if key == "" {
		return
	}
	if _, exists := raw[key]; exists {
		return
	}
	raw[key] = cleanText(value)
}

func (e *Extractor) extractNamed(doc *goquery.Document, name, selector *string) string {
	if name == nil || *name == "" {
		return selectText(doc, selector)
	}
	fn, ok := Extractors[*name]
	if !ok {
		if e.logger != nil {
			e.logger.Warn("unknown extractor, falling back to selector text", "extractor", *name)
		}
		return selectText(doc, selector)
	}
	return fn(doc, models.Deref(selector))
}

func selectText(doc *goquery.Document, selector *string) string {
	if selector == nil {
		return ""
	}
	return extractText(doc, *selector)
}

// imageSource returns the absolute src of the first matching image
func imageSource(doc *goquery.Document, selector, pageURL string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	if !sel.Is("img") {
		sel = sel.Find("img").First()
	}
	src, ok := sel.Attr("src")
	if !ok || src == "" {
		src, _ = sel.Attr("data-src")
	}
	if src == "" {
		return ""
	}
	return ResolveURL(pageURL, src)
}

// ResolveURL makes href absolute relative to base; unparseable input is returned unchanged
func ResolveURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
