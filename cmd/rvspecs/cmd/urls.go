package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/titanous/json5"
)

// readURLList reads a JSON array of URLs or a plain file with one URL per line.
// Blank lines and lines starting with # are skipped.
func readURLList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var urls []string
		if err := json5.Unmarshal(trimmed, &urls); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return urls, nil
	}

	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

// outputFiles returns args, or every per-make JSON file in the output directory
func outputFiles(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	matches, err := filepath.Glob(filepath.Join(cfg.OutputDir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no output files in %s", cfg.OutputDir)
	}
	return matches, nil
}
