package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/titanous/json5"
)

// Unit is the type tag that selects a field's converter
type Unit string

const (
	UnitNumber     Unit = "number"
	UnitString     Unit = "string"
	UnitBoolean    Unit = "boolean"
	UnitInches     Unit = "inches"
	UnitFeet       Unit = "feet"
	UnitFeetInches Unit = "feetinches"
	UnitGallons    Unit = "gallons"
	UnitCubicFeet  Unit = "cubic feet"
	UnitBTU        Unit = "btu"
	UnitPoundFeet  Unit = "poundfeet"
)

// Field names the pipeline writes directly
const (
	URL               = "URL"
	Year              = "Year"
	Make              = "Make"
	Model             = "Model"
	Trim              = "Trim"
	Name              = "Name"
	Type              = "Type"
	Description       = "Description"
	WebFeatures       = "Web features"
	FloorPlan         = "Floor plan"
	DryWeight         = "Dry weight lbs"
	GVWR              = "Gvwr lbskgs"
	CCC               = "CCC"
	TireCode          = "Tire code"
	RearTireDiameter  = "Rear tire diameter in"
	RearWheelDiameter = "Rear wheel diameter in"
	RearWheelWidth    = "Rear wheel width in"
	AwningLength      = "Awning length ftm"
)

//go:embed standardized.json5
var standardizedFile []byte

var (
	units map[string]Unit
	keys  []string
)

func init() {
	var raw map[string]string
	if err := json5.Unmarshal(standardizedFile, &raw); err != nil {
		panic(fmt.Sprintf("failed to parse standardized schema: %v", err))
	}

	units = make(map[string]Unit, len(raw))
	keys = make([]string, 0, len(raw))
	for k, v := range raw {
		u := Unit(v)
		if !u.Valid() {
			panic(fmt.Sprintf("standardized schema: unknown unit %q for %q", v, k))
		}
		units[k] = u
		keys = append(keys, k)
	}
	sort.Strings(keys)
}

// Valid reports whether u is one of the known unit tags
func (u Unit) Valid() bool {
	switch u {
	case UnitNumber, UnitString, UnitBoolean, UnitInches, UnitFeet,
		UnitFeetInches, UnitGallons, UnitCubicFeet, UnitBTU, UnitPoundFeet:
		return true
	}
	return false
}

// UnitOf returns the unit tag for a canonical key
func UnitOf(key string) (Unit, bool) {
	u, ok := units[key]
	return u, ok
}

// Has reports whether key is a canonical field
func Has(key string) bool {
	_, ok := units[key]
	return ok
}

// Keys returns every canonical field name, sorted
func Keys() []string {
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Len returns the number of canonical fields
func Len() int {
	return len(keys)
}

// Suggest returns up to n canonical keys most similar to raw
func Suggest(raw string, n int) []string {
	if n <= 0 {
		return nil
	}
	type scored struct {
		key   string
		score float64
	}

	target := strings.ToLower(strings.TrimSpace(raw))
	all := make([]scored, 0, len(keys))
	for _, k := range keys {
		all = append(all, scored{k, matchr.JaroWinkler(target, strings.ToLower(k), false)})
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})

	if n > len(all) {
		n = len(all)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].key
	}
	return out
}
