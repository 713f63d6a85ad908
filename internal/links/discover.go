package links

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/thesavant42/rvspecs/internal/scrape"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// DefaultConcurrency bounds in-flight listing page fetches
	DefaultConcurrency = 36
	// DefaultRate is the sustained listing page request rate per second
	DefaultRate = 4.0
)

// Group is a set of listing pages sharing one link selector
type Group struct {
	Selector string   `json:"selector"`
	Pages    []string `json:"pages"`
}

// Discoverer collects detail page URLs from listing pages
type Discoverer struct {
	fetcher     scrape.Fetcher
	limiter     *rate.Limiter
	concurrency int
	logger      *log.Logger
}

// NewDiscoverer creates a discoverer; zero values select the defaults
func NewDiscoverer(fetcher scrape.Fetcher, concurrency int, perSecond float64, logger *log.Logger) *Discoverer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if perSecond <= 0 {
		perSecond = DefaultRate
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Discoverer{
		fetcher:     fetcher,
		limiter:     rate.NewLimiter(rate.Limit(perSecond), 1),
		concurrency: concurrency,
		logger:      logger,
	}
}

// Discover returns the absolute hrefs of every element matching each group's
// selector, in page order, without duplicates. A page that fails to load is
// logged and contributes nothing.
func (d *Discoverer) Discover(ctx context.Context, groups []Group) ([]string, error) {
	type slot struct{ links []string }

	var slots []*slot
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, group := range groups {
		for _, page := range group.Pages {
			s := &slot{}
			slots = append(slots, s)
			selector, pageURL := group.Selector, page

			g.Go(func() error {
				if err := d.limiter.Wait(ctx); err != nil {
					return err
				}
				found, err := d.extract(ctx, pageURL, selector)
				if err != nil {
					d.logger.Error("failed to extract links", "page", pageURL, "err", err)
					return nil
				}
				d.logger.Debug("extracted links", "page", pageURL, "count", len(found))
				s.links = found
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("link discovery cancelled: %w", err)
	}

	seen := make(map[string]bool)
	var out []string
	for _, s := range slots {
		for _, l := range s.links {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func (d *Discoverer) extract(ctx context.Context, pageURL, selector string) ([]string, error) {
	html, err := d.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	var found []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if !s.Is("a") {
			s = s.Find("a").First()
		}
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		found = append(found, scrape.ResolveURL(pageURL, href))
	})
	return found, nil
}
