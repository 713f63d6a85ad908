package convert

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrInvalidType is returned when a converter receives a value of the wrong kind
	ErrInvalidType = errors.New("invalid type")
	// ErrInvalidFormat is returned when text does not match the expected encoding
	ErrInvalidFormat = errors.New("invalid format")
)

// leadingFloat matches the numeric prefix a lenient float parser would accept
var leadingFloat = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParseNumeric converts a scraped value to a float.
// Numbers pass through. Strings lose their thousands separators and are parsed
// up to the first non-numeric character ("10 cu ft" -> 10). ok is false for nil
// and for strings without a numeric prefix.
func ParseNumeric(v any) (f float64, ok bool, err error) {
	switch n := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return n, !math.IsNaN(n), nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case int32:
		return float64(n), true, nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		m := leadingFloat.FindString(s)
		if m == "" {
			return 0, false, nil
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false, nil
		}
		return f, true, nil
	default:
		return 0, false, fmt.Errorf("%w: cannot parse %T as a number", ErrInvalidType, v)
	}
}

// round1 rounds half away from zero to one decimal place
func round1(f float64) float64 {
	return math.Floor(f*10+0.5) / 10
}

// asText returns the string form of a scalar value
func asText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
