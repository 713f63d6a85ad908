package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	feetInchesAnchored = regexp.MustCompile(`(?i)^(\d+\.?\d*)\s*(?:'|ft|ft\.)\s*(?:(\d+\.?\d*)\s*(?:''|"|in|in\.)?)?`)
	feetInchesAnywhere = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(?:'|ft|ft\.)\s*(?:(\d+\.?\d*)\s*(?:''|"|in|in\.)?)?`)
	plainInches        = regexp.MustCompile(`(?i)^(\d+\.?\d*)\s*(?:''|"|in\b|in\.|inches\b)?`)
	awningToken        = regexp.MustCompile(`(\d+')(?:\s*(\d*)")?(?:\s*(\d*)'')?`)
)

// FeetInchesToInches converts text like `5' 1" w/A/C` to inches (61).
// Trailing text after the measurement is ignored.
func FeetInchesToInches(text string) (float64, error) {
	m := feetInchesAnchored.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, fmt.Errorf("%w: no feet measurement in %q", ErrInvalidFormat, text)
	}

	feet, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad feet value %q", ErrInvalidFormat, m[1])
	}
	var inches float64
	if m[2] != "" {
		inches, err = strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad inches value %q", ErrInvalidFormat, m[2])
		}
	}
	return feet*12 + inches, nil
}

// toInches accepts a feet/inches expression or a bare inch count ("102", `102"`)
func toInches(v any) (float64, error) {
	if s, ok := v.(string); ok {
		in, err := FeetInchesToInches(s)
		if err == nil {
			return in, nil
		}
		if m := plainInches.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
			return strconv.ParseFloat(m[1], 64)
		}
		return 0, err
	}

	f, ok, err := ParseNumeric(v)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %v is not a length", ErrInvalidFormat, v)
	}
	return f, nil
}

// SplitAwningMeasurements separates run-together awning lengths:
// `8' 10'2"` becomes `8' & 10' 2"`.
func SplitAwningMeasurements(text string) string {
	var tokens []string
	for _, m := range awningToken.FindAllStringSubmatch(text, -1) {
		token := m[1]
		inches := 0
		for _, part := range m[2:] {
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err == nil {
				inches += n
			}
		}
		if inches > 0 {
			token += fmt.Sprintf(` %d"`, inches)
		}
		tokens = append(tokens, token)
	}
	return strings.Join(tokens, " & ")
}
