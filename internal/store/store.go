// Package store persists run records in SQLite and writes per-run digest
// artifacts as JSON files.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"xscout/internal/core"
)

// Store is the SQLite-backed run archive. The database lives in the data
// directory; JSON artifacts go to the packs directory.
type Store struct {
	db       *sql.DB
	packsDir string
}

// NewStore opens (or creates) the run database under dataDir.
func NewStore(dataDir, packsDir string) (*Store, error) {
	for _, dir := range []string{dataDir, packsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	dbPath := filepath.Join(dataDir, "xscout.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, packsDir: packsDir}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	runsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT,
		run_at DATETIME,
		collected INTEGER,
		passed INTEGER,
		selected INTEGER,
		skipped TEXT,
		candidates TEXT
	);`

	if _, err := s.db.Exec(runsTable); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists one run record. An empty record id gets a fresh UUID.
func (s *Store) SaveRun(record core.RunRecord) (core.RunRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	skipped, err := json.Marshal(record.Stats.Skipped)
	if err != nil {
		return record, fmt.Errorf("failed to marshal skip histogram: %w", err)
	}
	candidates, err := json.Marshal(record.Candidates)
	if err != nil {
		return record, fmt.Errorf("failed to marshal candidate summaries: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO runs (id, mode, run_at, collected, passed, selected, skipped, candidates)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.Exec(query, record.ID, record.Mode, record.Timestamp,
		record.Stats.Collected, record.Stats.Passed, record.Stats.Selected,
		string(skipped), string(candidates))
	if err != nil {
		return record, fmt.Errorf("failed to save run: %w", err)
	}
	return record, nil
}

// ListRuns returns run records from the last `days` days, newest first.
func (s *Store) ListRuns(days int) ([]core.RunRecord, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	rows, err := s.db.Query(`
		SELECT id, mode, run_at, collected, passed, selected, skipped, candidates
		FROM runs WHERE run_at >= ? ORDER BY run_at DESC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []core.RunRecord
	for rows.Next() {
		var rec core.RunRecord
		var skipped, candidates string
		if err := rows.Scan(&rec.ID, &rec.Mode, &rec.Timestamp,
			&rec.Stats.Collected, &rec.Stats.Passed, &rec.Stats.Selected,
			&skipped, &candidates); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if skipped != "" {
			if err := json.Unmarshal([]byte(skipped), &rec.Stats.Skipped); err != nil {
				return nil, fmt.Errorf("failed to decode skip histogram for run %s: %w", rec.ID, err)
			}
		}
		if candidates != "" {
			if err := json.Unmarshal([]byte(candidates), &rec.Candidates); err != nil {
				return nil, fmt.Errorf("failed to decode candidate summaries for run %s: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// WriteArtifact writes the JSON digest artifact for one run, named
// <mode>-digest-<date>.json under the packs directory.
func (s *Store) WriteArtifact(record core.RunRecord) (string, error) {
	name := fmt.Sprintf("%s-digest-%s.json", record.Mode, record.Timestamp.UTC().Format("2006-01-02"))
	path := filepath.Join(s.packsDir, name)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run artifact: %w", err)
	}
	return path, nil
}
