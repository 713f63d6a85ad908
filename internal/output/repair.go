package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/thesavant42/rvspecs/internal/models"
)

// RepairBrackets makes an interrupted output file a valid JSON array again:
// a missing "[" is prepended, a dangling "," dropped and a missing "]" appended.
// Running it on a well-formed file changes nothing.
func RepairBrackets(path string) (changed bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fixed := repair(data)
	if bytes.Equal(fixed, data) {
		return false, nil
	}
	if err := os.WriteFile(path, fixed, 0644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

func repair(data []byte) []byte {
	if json.Valid(data) {
		return data
	}

	body := append([]byte(nil), bytes.TrimSpace(data)...)
	if !bytes.HasPrefix(body, []byte("[")) {
		body = append([]byte("[\n"), body...)
	}
	body = bytes.TrimSuffix(body, []byte("]"))
	body = bytes.TrimRight(body, " \t\r\n,")
	return append(body, []byte("\n]\n")...)
}

// ReadRecords loads every record from an output file, repairing it in memory first
func ReadRecords(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []models.Record
	if err := json.Unmarshal(repair(data), &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}
