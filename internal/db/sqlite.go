package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/thesavant42/rvspecs/internal/models"
	"github.com/thesavant42/rvspecs/internal/schema"

	_ "modernc.org/sqlite"
)

const timeFormat = "2006-01-02T15:04:05Z"

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// StoredRecord is a record row read back from the database
type StoredRecord struct {
	ID        string
	RunID     string
	URL       string
	Make      string
	Name      string
	Record    models.Record
	CreatedAt time.Time
}

// MakeCount is the number of stored records for one make
type MakeCount struct {
	Make  string
	Count int
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec(createRecordsTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create records schema: %w", err)
	}

	if _, err := conn.Exec(createFailuresTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create failures schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// NewRunID returns an identifier grouping the rows written by one run
func NewRunID() string {
	return uuid.NewString()
}

// InsertRecord stores one record and returns its id
func (db *DB) InsertRecord(runID string, rec models.Record) (string, error) {
	ids, err := db.InsertRecords(runID, []models.Record{rec})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// InsertRecords stores records in a single transaction
func (db *DB) InsertRecords(runID string, records []models.Record) ([]string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(timeFormat)
	ids := make([]string, 0, len(records))
	for _, r := range records {
		data, err := json.Marshal(r.Fields)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record: %w", err)
		}
		verify, err := json.Marshal(r.VerifyManually)
		if err != nil {
			return nil, fmt.Errorf("failed to encode verify list: %w", err)
		}

		id := uuid.NewString()
		_, err = stmt.Exec(
			id,
			runID,
			r.String(schema.URL),
			r.String(schema.Make),
			r.String(schema.Name),
			string(data),
			string(verify),
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert record %s: %w", r.String(schema.URL), err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ids, nil
}

// GetRecordsByMake returns every stored record for a make, oldest first
func (db *DB) GetRecordsByMake(makeName string) ([]StoredRecord, error) {
	rows, err := db.conn.Query(selectRecordsByMake, makeName)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var s StoredRecord
		var data, verify, created string
		if err := rows.Scan(&s.ID, &s.RunID, &s.URL, &s.Make, &s.Name, &data, &verify, &created); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &s.Record); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", s.ID, err)
		}
		if err := json.Unmarshal([]byte(verify), &s.Record.VerifyManually); err != nil {
			return nil, fmt.Errorf("failed to decode verify list %s: %w", s.ID, err)
		}
		s.CreatedAt, _ = time.Parse(timeFormat, created)
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountRecords returns the number of stored records
func (db *DB) CountRecords() (int, error) {
	var total int
	if err := db.conn.QueryRow(selectRecordCount).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return total, nil
}

// GetMakeCounts returns record counts per make, largest first
func (db *DB) GetMakeCounts() ([]MakeCount, error) {
	rows, err := db.conn.Query(selectMakeCounts)
	if err != nil {
		return nil, fmt.Errorf("failed to query make counts: %w", err)
	}
	defer rows.Close()

	var out []MakeCount
	for rows.Next() {
		var m MakeCount
		if err := rows.Scan(&m.Make, &m.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// InsertFailure records a URL that did not produce a record
func (db *DB) InsertFailure(runID string, f models.Failure) error {
	_, err := db.conn.Exec(insertFailure, runID, f.URL, f.Stage, f.Err, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to insert failure for %s: %w", f.URL, err)
	}
	return nil
}

// GetFailures returns the failures recorded for a run
func (db *DB) GetFailures(runID string) ([]models.Failure, error) {
	rows, err := db.conn.Query(selectFailuresByRun, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	var out []models.Failure
	for rows.Next() {
		var f models.Failure
		if err := rows.Scan(&f.URL, &f.Stage, &f.Err); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
