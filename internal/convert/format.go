package convert

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thesavant42/rvspecs/internal/schema"
)

// Conversion factors
const (
	NewtonMetersToPoundFeet = 0.737562
	CubicFeetToGallons      = 7.481
	GallonsToCubicFeet      = 0.133681
	TonsToBTU               = 12000
	KilowattsToBTU          = 3412
)

var (
	newtonMeters = regexp.MustCompile(`(?i)nm|newton.*meters`)
	cubicFeet    = regexp.MustCompile(`(?i)cu\.?\s*ft`)
	gallons      = regexp.MustCompile(`(?i)gal\.?`)
	tons         = regexp.MustCompile(`(?i)ton`)
	kilowatts    = regexp.MustCompile(`(?i)kw|kilowatt`)
)

// UnknownFormatTypeError means a key has no usable unit tag in the schema
type UnknownFormatTypeError struct {
	Key  string
	Unit schema.Unit
}

func (e *UnknownFormatTypeError) Error() string {
	return fmt.Sprintf("unknown formatting type: %q for key: %q", e.Unit, e.Key)
}

// FormatValue converts a value to the final representation for its canonical key.
// nil stays nil. A value that has no numeric content for a numeric unit becomes nil.
func FormatValue(key string, value any) (any, error) {
	unit, ok := schema.UnitOf(key)
	if !ok || !unit.Valid() {
		return nil, &UnknownFormatTypeError{Key: key, Unit: unit}
	}
	if value == nil {
		return nil, nil
	}

	switch unit {
	case schema.UnitNumber:
		return numberOrNil(value)
	case schema.UnitString:
		return asText(value), nil
	case schema.UnitBoolean:
		return ToBool(value), nil
	case schema.UnitPoundFeet:
		return scaled(value, newtonMeters, NewtonMetersToPoundFeet)
	case schema.UnitInches:
		return toInches(value)
	case schema.UnitFeetInches:
		text := asText(value)
		if m := feetInchesAnywhere.FindString(text); m != "" {
			return strings.TrimSpace(m), nil
		}
		return text, nil
	case schema.UnitFeet:
		if s, ok := value.(string); ok {
			if in, err := FeetInchesToInches(s); err == nil {
				return round1(in / 12), nil
			}
		}
		return numberOrNil(value)
	case schema.UnitGallons:
		return scaled(value, cubicFeet, CubicFeetToGallons)
	case schema.UnitCubicFeet:
		return scaled(value, gallons, GallonsToCubicFeet)
	case schema.UnitBTU:
		text := asText(value)
		if tons.MatchString(text) {
			return scaled(value, tons, TonsToBTU)
		}
		return scaled(value, kilowatts, KilowattsToBTU)
	}
	return nil, &UnknownFormatTypeError{Key: key, Unit: unit}
}

func numberOrNil(value any) (any, error) {
	f, ok, err := ParseNumeric(value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return f, nil
}

// scaled parses value and multiplies it by factor when pattern matches the text
func scaled(value any, pattern *regexp.Regexp, factor float64) (any, error) {
	f, ok, err := ParseNumeric(value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if s, isText := value.(string); isText && pattern.MatchString(s) {
		return f * factor, nil
	}
	return f, nil
}

// negative phrases that mark a feature as absent
var negativeWords = map[string]bool{
	"no": true, "none": true, "not": true, "n/a": true, "na": true,
	"without": true, "optional": true, "false": true, "0": true, "-": true,
	"unavailable": true,
}

// ToBool coerces a scraped value to a boolean.
// A string is true when it is non-empty and its first word is not a negative keyword.
func ToBool(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if s == "" {
			return false
		}
		if negativeWords[s] {
			return false
		}
		first := strings.FieldsFunc(s, func(r rune) bool {
			return r == ' ' || r == ',' || r == ';' || r == '.' || r == '(' || r == ')'
		})
		if len(first) > 0 && negativeWords[first[0]] {
			return false
		}
		return true
	default:
		f, ok, err := ParseNumeric(value)
		return err == nil && ok && f != 0
	}
}
