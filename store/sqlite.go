// ABOUTME: SQLite-backed person store serving as a rebuildable cache between record sources and the pipeline.
// ABOUTME: Saves whole record collections transactionally, stamped with a ULID import-batch id.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/treeline-tools/treeline/family"
)

// PersonStore is a SQLite-backed cache of person records. It is always
// rebuildable from the originating source (vault or GEDCOM file) and is
// never the source of truth.
type PersonStore struct {
	db *sql.DB
}

// Open opens or creates a person store database at the given path and
// runs migrations to ensure the schema is up to date.
func Open(path string) (*PersonStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS persons (
			person_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			birth_date TEXT NOT NULL,
			death_date TEXT NOT NULL,
			sex TEXT NOT NULL,
			father_id TEXT NOT NULL,
			mother_id TEXT NOT NULL,
			spouse_ids TEXT NOT NULL,
			children_ids TEXT NOT NULL,
			batch_id TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &PersonStore{db: db}, nil
}

// Close closes the database connection.
func (s *PersonStore) Close() error {
	return s.db.Close()
}

// SaveAll replaces the stored collection with records in one
// transaction and returns the ULID batch id stamped on every row.
func (s *PersonStore) SaveAll(records []family.PersonRecord) (string, error) {
	batchID := ulid.Make().String()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM persons"); err != nil {
		return "", fmt.Errorf("clear persons: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO persons (person_id, name, birth_date, death_date, sex,
			father_id, mother_id, spouse_ids, children_ids, batch_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		spouses, err := json.Marshal(rec.SpouseIDs)
		if err != nil {
			return "", fmt.Errorf("encode spouses for %s: %w", rec.ID, err)
		}
		children, err := json.Marshal(rec.ChildrenIDs)
		if err != nil {
			return "", fmt.Errorf("encode children for %s: %w", rec.ID, err)
		}
		if _, err := stmt.Exec(rec.ID, rec.Name, rec.BirthDate, rec.DeathDate, rec.Sex,
			rec.FatherID, rec.MotherID, string(spouses), string(children), batchID); err != nil {
			return "", fmt.Errorf("insert person %s: %w", rec.ID, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO meta (key, value) VALUES ('last_batch', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, batchID); err != nil {
		return "", fmt.Errorf("record batch id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save: %w", err)
	}
	return batchID, nil
}

// LoadAll returns every stored record ordered by person id.
func (s *PersonStore) LoadAll() ([]family.PersonRecord, error) {
	rows, err := s.db.Query(
		`SELECT person_id, name, birth_date, death_date, sex,
			father_id, mother_id, spouse_ids, children_ids
		 FROM persons ORDER BY person_id`)
	if err != nil {
		return nil, fmt.Errorf("query persons: %w", err)
	}
	defer rows.Close()

	var records []family.PersonRecord
	for rows.Next() {
		var rec family.PersonRecord
		var spouses, children string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.BirthDate, &rec.DeathDate, &rec.Sex,
			&rec.FatherID, &rec.MotherID, &spouses, &children); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		if err := json.Unmarshal([]byte(spouses), &rec.SpouseIDs); err != nil {
			return nil, fmt.Errorf("decode spouses for %s: %w", rec.ID, err)
		}
		if err := json.Unmarshal([]byte(children), &rec.ChildrenIDs); err != nil {
			return nil, fmt.Errorf("decode children for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return records, nil
}

// LastBatch returns the batch id of the most recent SaveAll, or empty
// when the store has never been written.
func (s *PersonStore) LastBatch() (string, error) {
	var batchID string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'last_batch'`).Scan(&batchID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last batch: %w", err)
	}
	return batchID, nil
}
