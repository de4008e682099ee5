// Package jsonfile stores per-document records and the final result as
// indented JSON files in an output directory.
//
// Each document gets "<name>.json" holding an array of records, so
// "report.pdf" and "report.txt" keep separate files. The final result is
// written under its own file name and is skipped when records are listed.
// A record file that would take the final result's name gets a ".records"
// marker before the extension instead.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RecordStore = (*Store)(nil)

// DefaultFinalName is the file name of the final result.
const DefaultFinalName = "result.json"

const (
	recordExt    = ".json"
	recordMarker = ".records"
)

// Store is a directory-backed implementation of driven.RecordStore.
type Store struct {
	dir       string
	finalName string
}

// Option configures a Store.
type Option func(*Store)

// WithFinalName overrides the final result file name.
func WithFinalName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.finalName = name
		}
	}
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: output directory is required", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	s := &Store{dir: dir, finalName: DefaultFinalName}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// RecordPath returns the file a document's records are written to.
func (s *Store) RecordPath(document string) string {
	return filepath.Join(s.dir, s.recordName(document))
}

func (s *Store) recordName(document string) string {
	name := filepath.Base(document) + recordExt
	if strings.EqualFold(name, s.finalName) {
		name = filepath.Base(document) + recordMarker + recordExt
	}
	return name
}

// documentName recovers the document name from a record file name.
func (s *Store) documentName(file string) string {
	document := strings.TrimSuffix(file, filepath.Ext(file))
	if escaped := strings.TrimSuffix(document, recordMarker); escaped != document &&
		strings.EqualFold(escaped+recordExt, s.finalName) {
		return escaped
	}
	return document
}

// FinalPath returns the file the final result is written to.
func (s *Store) FinalPath() string {
	return filepath.Join(s.dir, s.finalName)
}

// SaveRecords writes a document's records, replacing any earlier file.
func (s *Store) SaveRecords(ctx context.Context, document string, records []domain.QueryResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []domain.QueryResult{}
	}
	return writeJSON(s.RecordPath(document), records)
}

// DeleteRecords removes a document's record file. A missing file is not an error.
func (s *Store) DeleteRecords(ctx context.Context, document string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.RecordPath(document)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove records for %s: %w", document, err)
	}
	return nil
}

// ListRecords reads every record file in the directory, ordered by file name.
func (s *Store) ListRecords(ctx context.Context) ([]domain.DocumentRecords, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read output directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), recordExt) || strings.EqualFold(name, s.finalName) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]domain.DocumentRecords, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		var records []domain.QueryResult
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}

		document := s.documentName(name)
		if len(records) > 0 && records[0].Document != "" {
			document = records[0].Document
		}
		sets = append(sets, domain.DocumentRecords{Document: document, Records: records})
	}
	return sets, nil
}

// SaveFinal writes the final result file.
func (s *Store) SaveFinal(ctx context.Context, result *domain.FinalResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: final result is nil", domain.ErrInvalidInput)
	}
	return writeJSON(s.FinalPath(), result)
}

// Close is a no-op; files are closed after each write.
func (s *Store) Close() error {
	return nil
}

// writeJSON encodes v with two-space indentation and non-ASCII text kept
// verbatim, then renames it into place.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
