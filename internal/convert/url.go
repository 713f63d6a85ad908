package convert

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	travelTrailer = regexp.MustCompile(`travel[^a-z]{0,2}trailer`)
	fifthWheel    = regexp.MustCompile(`fifth[^a-z]{0,2}wheel`)
	toyHauler     = regexp.MustCompile(`toy[^a-z]{0,2}hauler`)
	whitespace    = regexp.MustCompile(`\s+`)
)

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q is not absolute", raw)
	}
	return u, nil
}

// RVTypeFromURL infers the RV type from words in the URL.
// "Toy Hauler" only qualifies a travel trailer or fifth wheel match; ok is false otherwise.
func RVTypeFromURL(raw string) (rvType string, ok bool, err error) {
	if _, err := parseAbsolute(raw); err != nil {
		return "", false, err
	}
	lower := strings.ToLower(raw)

	switch {
	case fifthWheel.MatchString(lower):
		rvType = "Fifth Wheel"
	case travelTrailer.MatchString(lower):
		rvType = "Travel Trailer"
	default:
		return "", false, nil
	}
	if toyHauler.MatchString(lower) {
		rvType += " Toy Hauler"
	}
	return rvType, true, nil
}

// LastURLSegment returns the final non-empty path segment
func LastURLSegment(raw string) (string, error) {
	u, err := parseAbsolute(raw)
	if err != nil {
		return "", err
	}
	var last string
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			last = seg
		}
	}
	return last, nil
}

// Slug lower-cases s and replaces whitespace runs with "-"
func Slug(s string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
}
