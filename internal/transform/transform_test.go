package transform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/rvspecs/internal/convert"
	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/resolver"
	"github.com/thesavant42/rvspecs/internal/schema"
)

type fakeImages struct {
	calls []string
	err   error
}

func (f *fakeImages) Convert(_ context.Context, srcURL, baseName, outDir string) (string, error) {
	f.calls = append(f.calls, baseName)
	if f.err != nil {
		return "", f.err
	}
	return outDir + "/images/" + baseName + "-0.png", nil
}

type noopPersister struct{ err error }

func (p noopPersister) Persist() error { return p.err }

type stubResolver struct {
	fields models.CanonicalRecord
	err    error
}

func (s stubResolver) ResolveRecord(*models.DomainMapping, models.RawRecord) (models.CanonicalRecord, error) {
	return s.fields, s.err
}

func mapping() *models.DomainMapping {
	return &models.DomainMapping{
		Make: "Grand Design",
		KeyMappings: map[string]*string{
			"Dry Weight":  models.StringPtr(schema.DryWeight),
			"GVWR":        models.StringPtr(schema.GVWR),
			"Awning":      models.StringPtr(schema.AwningLength),
			"Tires":       models.StringPtr(schema.TireCode),
			"Shower":      models.StringPtr("Shower"),
			"Fireplace":   models.StringPtr("Fireplace"),
			"Length":      models.StringPtr("Length ftin"),
			"A/C":         models.StringPtr("Air conditioning"),
			"Fresh Water": models.StringPtr("Total fresh water tank capacity gall"),
			"Stock #":     nil,
		},
	}
}

func samplePage() models.Page {
	return models.Page{
		URL: "https://www.granddesignrv.com/travel-trailers/imagine/2500rl",
		Raw: models.RawRecord{
			"Dry Weight":  "4,915 lbs",
			"GVWR":        "6,995",
			"Awning":      `8' 10'2"`,
			"Tires":       "ST205/75R14D",
			"Shower":      "Yes",
			"Fireplace":   "None",
			"Length":      `Overall 30' 6"`,
			"A/C":         "1 ton",
			"Fresh Water": "10 cu ft",
			"Stock #":     "A1",
		},
		Model:    "Imagine",
		ImageURL: "https://cdn.example.com/2500rl.jpg",
	}
}

func newTransformer(images ImageConverter) *Transformer {
	r := resolver.New(models.SynonymDictionary{}, nil, noopPersister{}, nil)
	return New(r, images, "out", "2024", nil)
}

func TestTransform(t *testing.T) {
	images := &fakeImages{}
	rec, err := newTransformer(images).Transform(context.Background(), samplePage(), mapping())
	require.NoError(t, err)

	f := rec.Fields
	assert.Equal(t, "https://www.granddesignrv.com/travel-trailers/imagine/2500rl", f[schema.URL])
	assert.Equal(t, 2024.0, f[schema.Year])
	assert.Equal(t, "Grand Design", f[schema.Make])
	assert.Equal(t, "Travel Trailer", f[schema.Type])
	assert.Equal(t, "Imagine", f[schema.Model])
	assert.Equal(t, "2500rl", f[schema.Trim])
	assert.Equal(t, "2024 Grand Design Imagine 2500rl", f[schema.Name])

	assert.Equal(t, []string{"Imagine__2500rl"}, images.calls)
	assert.Equal(t, "Imagine__2500rl-0.png", f[schema.FloorPlan])

	assert.Equal(t, `8' & 10' 2"`, f[schema.AwningLength])
	assert.Equal(t, 4915.0, f[schema.DryWeight])
	assert.Equal(t, 6995.0, f[schema.GVWR])
	assert.Equal(t, 2080.0, f[schema.CCC])
	assert.Equal(t, 26.2, f[schema.RearTireDiameter])
	assert.Equal(t, 14.0, f[schema.RearWheelDiameter])
	assert.Nil(t, f[schema.RearWheelWidth])

	assert.Equal(t, true, f["Shower"])
	assert.Equal(t, false, f["Fireplace"])
	assert.Equal(t, `30' 6"`, f["Length ftin"])
	assert.Equal(t, 12000.0, f["Air conditioning"])
	assert.InDelta(t, 74.81, f["Total fresh water tank capacity gall"], 1e-9)

	for k := range f {
		assert.True(t, schema.Has(k), "non-schema key %q", k)
	}
	assert.Len(t, f, schema.Len())
	assert.NotContains(t, f, "Stock #")
	assert.NotContains(t, f, "null")

	assert.Contains(t, rec.VerifyManually, schema.RearWheelWidth)
	assert.NotContains(t, rec.VerifyManually, schema.Make)
	assert.IsIncreasing(t, rec.VerifyManually)
}

func TestTransformSelectorsOverride(t *testing.T) {
	page := samplePage()
	page.Year = "2025"
	page.Type = "Fifth Wheel"
	page.Trim = "2500RL"
	page.Description = "Light and roomy"
	page.ImageURL = ""

	images := &fakeImages{}
	rec, err := newTransformer(images).Transform(context.Background(), page, mapping())
	require.NoError(t, err)

	assert.Equal(t, 2025.0, rec.Fields[schema.Year])
	assert.Equal(t, "Fifth Wheel", rec.Fields[schema.Type])
	assert.Equal(t, "2025 Grand Design Imagine 2500RL", rec.Fields[schema.Name])
	assert.Equal(t, "Light and roomy", rec.Fields[schema.Description])
	assert.Nil(t, rec.Fields[schema.FloorPlan])
	assert.Empty(t, images.calls)
}

func TestTransformYearSelectorText(t *testing.T) {
	tests := []struct {
		name     string
		year     string
		wantYear float64
		wantName string
	}{
		{"trailing words", "2025 Model Year", 2025, "2025 Grand Design Imagine 2500rl"},
		{"no number falls back to default", "New Model", 2024, "2024 Grand Design Imagine 2500rl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := samplePage()
			page.Year = tt.year
			rec, err := newTransformer(&fakeImages{}).Transform(context.Background(), page, mapping())
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, rec.Fields[schema.Year])
			assert.Equal(t, tt.wantName, rec.Fields[schema.Name])
		})
	}
}

func TestTransformFloorPlanNameHasNoPathSeparators(t *testing.T) {
	page := samplePage()
	page.Trim = "24/7"
	images := &fakeImages{}

	_, err := newTransformer(images).Transform(context.Background(), page, mapping())
	require.NoError(t, err)
	assert.Equal(t, []string{"Imagine__24_7"}, images.calls)
}

func TestTransformImageFailureIsNotFatal(t *testing.T) {
	rec, err := newTransformer(&fakeImages{err: errors.New("404")}).Transform(context.Background(), samplePage(), mapping())
	require.NoError(t, err)
	assert.Nil(t, rec.Fields[schema.FloorPlan])
	assert.Contains(t, rec.VerifyManually, schema.FloorPlan)
}

func TestTransformFieldConversionFailure(t *testing.T) {
	r := stubResolver{fields: models.CanonicalRecord{"Interior height in": "tall"}}
	rec, err := New(r, nil, "out", "2024", nil).Transform(context.Background(), samplePage(), mapping())
	require.NoError(t, err)
	assert.Nil(t, rec.Fields["Interior height in"])
	assert.Contains(t, rec.VerifyManually, "Interior height in")
}

func TestTransformInvalidTireCode(t *testing.T) {
	r := stubResolver{fields: models.CanonicalRecord{schema.TireCode: "not-a-tire"}}
	rec, err := New(r, nil, "out", "2024", nil).Transform(context.Background(), samplePage(), mapping())
	require.NoError(t, err)
	assert.Equal(t, "not-a-tire", rec.Fields[schema.TireCode])
	assert.Nil(t, rec.Fields[schema.RearTireDiameter])
}

func TestTransformErrors(t *testing.T) {
	t.Run("resolver failure aborts record", func(t *testing.T) {
		r := stubResolver{err: errors.New("prompt closed")}
		_, err := New(r, nil, "out", "2024", nil).Transform(context.Background(), samplePage(), mapping())
		var recErr *RecordError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, StageResolve, recErr.Stage)
		assert.Equal(t, "prompt closed", recErr.Failure().Err)
	})

	t.Run("persist failure is fatal", func(t *testing.T) {
		r := resolver.New(nil, nil, noopPersister{err: errors.New("disk")}, nil)
		_, err := New(r, nil, "out", "2024", nil).Transform(context.Background(), samplePage(), mapping())
		require.ErrorIs(t, err, resolver.ErrPersist)
		var recErr *RecordError
		assert.False(t, errors.As(err, &recErr))
	})

	t.Run("bad url aborts record", func(t *testing.T) {
		page := samplePage()
		page.URL = "relative/path"
		r := stubResolver{fields: models.CanonicalRecord{}}
		_, err := New(r, nil, "out", "2024", nil).Transform(context.Background(), page, mapping())
		var recErr *RecordError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, StageIdentity, recErr.Stage)
	})

	t.Run("schema drift is fatal", func(t *testing.T) {
		r := stubResolver{fields: models.CanonicalRecord{"Not A Field": "x"}}
		_, err := New(r, nil, "out", "2024", nil).Transform(context.Background(), samplePage(), mapping())
		var unknown *convert.UnknownFormatTypeError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "Not A Field", unknown.Key)
	})
}
