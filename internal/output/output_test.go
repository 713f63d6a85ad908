package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/rvspecs/internal/models"
)

func record(makeName, model string) models.Record {
	return models.Record{
		Fields:         models.CanonicalRecord{"Make": makeName, "Model": model, "Heater": nil},
		VerifyManually: []string{"Heater"},
	}
}

func TestWriterAppendAndClose(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	require.NoError(t, w.Append(record("Grand Design", "Imagine")))
	require.NoError(t, w.Append(record("Grand Design", "Solitude")))
	require.NoError(t, w.Append(record("Jayco", "Eagle")))
	require.NoError(t, w.Close())

	path := filepath.Join(dir, "grand-design.json")
	assert.Equal(t, []string{}, w.Paths())

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Solitude", records[1].String("Model"))
	assert.Equal(t, []string{"Heater"}, records[0].VerifyManually)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	jayco, err := ReadRecords(filepath.Join(dir, "jayco.json"))
	require.NoError(t, err)
	assert.Len(t, jayco, 1)
}

func TestWriterContinuesExistingArray(t *testing.T) {
	dir := t.TempDir()

	w := NewWriter(dir)
	require.NoError(t, w.Append(record("Jayco", "Eagle")))
	require.NoError(t, w.Close())

	w = NewWriter(dir)
	require.NoError(t, w.Append(record("Jayco", "Pinnacle")))
	require.NoError(t, w.Close())

	records, err := ReadRecords(filepath.Join(dir, "jayco.json"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Pinnacle", records[1].String("Model"))
}

func TestWriterResumesInterruptedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jayco.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"Make":"Jayco","Model":"Eagle","verifyManually":[]},`), 0644))

	w := NewWriter(dir)
	require.NoError(t, w.Append(record("Jayco", "Pinnacle")))
	require.NoError(t, w.Close())

	records, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestWriterReopenLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jayco.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"Make":"Jayco","Model":"Eagle","verifyManually":[]}]`), 0644))

	w := NewWriter(dir)
	require.NoError(t, w.Append(record("Jayco", "Pinnacle")))

	// before Close the earlier record is already back on disk
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Eagle"`)
	require.NoError(t, w.Close())

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Eagle", records[0].String("Model"))
}

func TestWriterRequiresMake(t *testing.T) {
	w := NewWriter(t.TempDir())
	assert.Error(t, w.Append(models.Record{Fields: models.CanonicalRecord{}}))
}

func TestRepairBrackets(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		changed bool
	}{
		{"well formed", "[\n  {\"a\": 1}\n]\n", false},
		{"missing close", "[\n  {\"a\": 1},\n  {\"a\": 2}", true},
		{"dangling comma", "[{\"a\": 1},", true},
		{"no brackets", "{\"a\": 1},{\"a\": 2},", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.in), 0644))

			changed, err := RepairBrackets(path)
			require.NoError(t, err)
			assert.Equal(t, tt.changed, changed)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, json.Valid(data), "not valid JSON: %s", data)

			again, err := RepairBrackets(path)
			require.NoError(t, err)
			assert.False(t, again, "second repair should be a no-op")
		})
	}
}
