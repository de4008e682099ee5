package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/persona-digest/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RecordStore = (*Store)(nil)

// DatabaseName is the file name of the database within the data directory.
const DatabaseName = "digest.db"

// Store is a SQLite-based record store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified directory.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("%w: data directory is required", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Document workers write concurrently; a single connection serialises them.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveRecords replaces the records stored for a document.
func (s *Store) SaveRecords(ctx context.Context, document string, records []domain.QueryResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE document = ?", document); err != nil {
		return fmt.Errorf("clearing records for %s: %w", document, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (document, position, query, top_score, payload)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		payload, err := json.Marshal(records[i])
		if err != nil {
			return fmt.Errorf("marshalling record: %w", err)
		}

		var topScore sql.NullFloat64
		if records[i].TopScore != nil {
			topScore = sql.NullFloat64{Float64: *records[i].TopScore, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx, document, i, records[i].Query, topScore, string(payload)); err != nil {
			return fmt.Errorf("inserting record: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteRecords removes the records stored for a document.
func (s *Store) DeleteRecords(ctx context.Context, document string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE document = ?", document); err != nil {
		return fmt.Errorf("deleting records for %s: %w", document, err)
	}
	return nil
}

// ListRecords returns every stored record set, ordered by document name.
func (s *Store) ListRecords(ctx context.Context) ([]domain.DocumentRecords, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT document, payload FROM records
		ORDER BY document, position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var sets []domain.DocumentRecords
	for rows.Next() {
		var document, payload string
		if err := rows.Scan(&document, &payload); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		var rec domain.QueryResult
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("unmarshalling record: %w", err)
		}

		if n := len(sets); n == 0 || sets[n-1].Document != document {
			sets = append(sets, domain.DocumentRecords{Document: document})
		}
		last := &sets[len(sets)-1]
		last.Records = append(last.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sets, nil
}

// SaveFinal stores the final ranked result as a new row.
func (s *Store) SaveFinal(ctx context.Context, result *domain.FinalResult) error {
	if result == nil {
		return fmt.Errorf("%w: final result is nil", domain.ErrInvalidInput)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshalling final result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO final_results (persona, job, payload) VALUES (?, ?, ?)
	`, result.Metadata.Persona, result.Metadata.JobToBeDone, string(payload))
	if err != nil {
		return fmt.Errorf("inserting final result: %w", err)
	}
	return nil
}

// LatestFinal returns the most recently saved final result.
// Returns domain.ErrNotFound if none has been saved.
func (s *Store) LatestFinal(ctx context.Context) (*domain.FinalResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM final_results ORDER BY id DESC LIMIT 1
	`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying final result: %w", err)
	}

	var result domain.FinalResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("unmarshalling final result: %w", err)
	}
	return &result, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}
