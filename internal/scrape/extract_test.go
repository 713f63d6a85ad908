package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/rvspecs/internal/models"
)

const samplePage = `<html>
<head>
  <title>Imagine 2500RL | Grand Design RV</title>
  <meta name="description" content="  Lightweight   travel trailer ">
  <meta property="og:image" content="https://cdn.example.com/og.jpg">
</head>
<body>
  <h1 class="model">Imagine</h1>
  <span class="trim">2500RL</span>
  <div class="floorplan"><img src="/img/2500rl-floorplan.jpg"></div>
  <table class="specs"><tbody>
    <tr><td>Sleeps:</td><td> 4 </td></tr>
    <tr><td>Dry Weight</td><td>5,180 lbs</td></tr>
    <tr><td>Sleeps</td><td>6</td></tr>
    <tr><td>lonely cell</td></tr>
  </tbody></table>
  <dl class="more"><dt>Fresh Water</dt><dd>47 gal</dd><dt>Awning</dt><dd>16'</dd></dl>
  <ul class="options"><li>Solar Prep</li><li>Fireplace</li></ul>
  <ul class="features"><li>LED lighting</li><li> Power jack </li></ul>
</body></html>`

func TestExtract(t *testing.T) {
	dm := &models.DomainMapping{
		Make:                 "Grand Design",
		ModelSelector:        models.StringPtr("h1.model"),
		TrimSelector:         models.StringPtr(".trim"),
		ImageSelector:        models.StringPtr(".floorplan"),
		DLSelector:           models.StringPtr("dl.more"),
		OptionsSelector:      models.StringPtr("ul.options li"),
		WebFeaturesSelector:  models.StringPtr("ul.features"),
		WebFeaturesExtractor: models.StringPtr("list-items"),
	}

	page, err := NewExtractor(nil).Extract("https://www.granddesignrv.com/travel-trailers/imagine/2500rl", samplePage, dm)
	require.NoError(t, err)

	assert.Equal(t, models.RawRecord{
		"Sleeps":      "4",
		"Dry Weight":  "5,180 lbs",
		"Fresh Water": "47 gal",
		"Awning":      "16'",
		"Solar Prep":  "Yes",
		"Fireplace":   "Yes",
	}, page.Raw)
	assert.Equal(t, "Imagine", page.Model)
	assert.Equal(t, "2500RL", page.Trim)
	assert.Equal(t, "LED lighting; Power jack", page.WebFeatures)
	assert.Equal(t, "https://www.granddesignrv.com/img/2500rl-floorplan.jpg", page.ImageURL)
	assert.Empty(t, page.Year)
}

func TestNamedExtractors(t *testing.T) {
	dm := &models.DomainMapping{
		ModelExtractor: models.StringPtr("title-before-dash"),
	}
	page, err := NewExtractor(nil).Extract("https://example.com/x", samplePage, dm)
	require.NoError(t, err)
	assert.Equal(t, "Imagine 2500RL", page.Model)

	dm.ModelExtractor = models.StringPtr("meta-description")
	page, err = NewExtractor(nil).Extract("https://example.com/x", samplePage, dm)
	require.NoError(t, err)
	assert.Equal(t, "Lightweight travel trailer", page.Model)

	assert.True(t, HasExtractor("og-image"))
	assert.False(t, HasExtractor("eval"))
	assert.Contains(t, ExtractorNames(), "first-heading")
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://example.com/a/b", "/img/x.png", "https://example.com/img/x.png"},
		{"https://example.com/a/b", "c", "https://example.com/a/c"},
		{"https://example.com/a/b", "https://cdn.example.com/y.jpg", "https://cdn.example.com/y.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := ResolveURL(tt.base, tt.href); got != tt.want {
				t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
			}
		})
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		fmt.Fprint(w, "<html>ok</html>")
	}))
	defer srv.Close()

	f := NewHTTPFetcher(0, 0, nil)

	body, err := f.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", body)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}
