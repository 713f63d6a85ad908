package mapping

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// SecondLevelDomain returns the registrable label of a URL's host:
// "https://www.granddesignrv.com/x" -> "granddesignrv", "https://foo.co.uk" -> "foo".
func SecondLevelDomain(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty input")
	}

	if strings.Contains(input, "://") {
		parsed, err := url.Parse(input)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		input = parsed.Hostname()
	}
	input = strings.ToLower(strings.TrimSuffix(input, "."))

	root, err := publicsuffix.EffectiveTLDPlusOne(input)
	if err != nil {
		return "", fmt.Errorf("failed to extract root domain: %w", err)
	}

	suffix, _ := publicsuffix.PublicSuffix(root)
	label := strings.TrimSuffix(root, "."+suffix)
	if label == "" || label == root {
		return "", fmt.Errorf("failed to strip suffix %q from %q", suffix, root)
	}
	return label, nil
}
