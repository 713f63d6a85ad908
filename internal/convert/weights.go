package convert

import (
	"fmt"

	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/schema"
)

// AddMissingGvwrUvwCcc fills whichever of dry weight, GVWR and cargo capacity
// can be derived from the other two (GVWR = dry weight + CCC).
// Fields present in the record are normalized to numbers first.
func AddMissingGvwrUvwCcc(rec models.CanonicalRecord) error {
	values := make(map[string]float64, 3)
	for _, key := range []string{schema.DryWeight, schema.GVWR, schema.CCC} {
		raw, present := rec[key]
		if !present {
			continue
		}
		f, ok, err := ParseNumeric(raw)
		if err != nil {
			return fmt.Errorf("failed to normalize %s: %w", key, err)
		}
		if !ok {
			rec[key] = nil
			continue
		}
		rec[key] = f
		values[key] = f
	}

	has := func(key string) bool { return values[key] != 0 }
	set := func(key string, f float64) {
		values[key] = f
		rec[key] = f
	}

	if has(schema.GVWR) && has(schema.CCC) {
		set(schema.DryWeight, values[schema.GVWR]-values[schema.CCC])
	}
	if has(schema.DryWeight) && has(schema.CCC) {
		set(schema.GVWR, values[schema.DryWeight]+values[schema.CCC])
	}
	if has(schema.GVWR) && has(schema.DryWeight) {
		set(schema.CCC, values[schema.GVWR]-values[schema.DryWeight])
	}
	return nil
}
