package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/thesavant42/rvspecs/internal/convert"
	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/schema"
)

// Writer appends records to one JSON array file per make
type Writer struct {
	dir   string
	files map[string]*os.File
	count map[string]int
}

// NewWriter writes files into dir
func NewWriter(dir string) *Writer {
	return &Writer{
		dir:   dir,
		files: make(map[string]*os.File),
		count: make(map[string]int),
	}
}

// PathFor returns the output file for a make
func (w *Writer) PathFor(makeName string) string {
	return filepath.Join(w.dir, convert.Slug(makeName)+".json")
}

// Append writes one record to its make's file, opening the array on first use
func (w *Writer) Append(rec models.Record) error {
	makeName := rec.String(schema.Make)
	if makeName == "" {
		return errors.New("record has no Make")
	}
	path := w.PathFor(makeName)

	f, ok := w.files[path]
	if !ok {
		var err error
		f, err = w.open(path)
		if err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(rec, "  ", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	prefix := "\n  "
	if w.count[path] > 0 {
		prefix = ",\n  "
	}
	if _, err := f.WriteString(prefix + string(data)); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	w.count[path]++
	return nil
}

// open prepares path for appending, continuing an existing array if there is one
func (w *Writer) open(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	body := bytes.TrimSpace(existing)
	body = bytes.TrimSuffix(body, []byte("]"))
	body = bytes.TrimRight(body, " \t\r\n,")
	if !bytes.HasPrefix(body, []byte("[")) {
		body = append([]byte("["), body...)
	}

	if err := replaceFile(path, body); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	w.files[path] = f
	if len(bytes.TrimSpace(body[1:])) > 0 {
		w.count[path] = 1
	}
	return f, nil
}

// replaceFile swaps in the reopened array through a temp file so earlier
// records survive a crash mid-write
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Paths lists the files touched in this run, sorted
func (w *Writer) Paths() []string {
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Close terminates every open array. All files are closed even if one fails.
func (w *Writer) Close() error {
	var errs []error
	for _, path := range w.Paths() {
		f := w.files[path]
		if _, err := f.WriteString("\n]\n"); err != nil {
			errs = append(errs, fmt.Errorf("failed to close array in %s: %w", path, err))
		}
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(w.files, path)
		delete(w.count, path)
	}
	return errors.Join(errs...)
}
