package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
// It backs --store memory runs and service tests.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string][]domain.QueryResult
	final   *domain.FinalResult
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string][]domain.QueryResult),
	}
}

// SaveRecords replaces the records stored for a document.
func (s *RecordStore) SaveRecords(_ context.Context, document string, records []domain.QueryResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[document] = slices.Clone(records)
	return nil
}

// DeleteRecords removes the records stored for a document.
func (s *RecordStore) DeleteRecords(_ context.Context, document string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, document)
	return nil
}

// ListRecords returns stored record sets ordered by document name.
func (s *RecordStore) ListRecords(_ context.Context) ([]domain.DocumentRecords, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.records))
	for name := range s.records {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.DocumentRecords, 0, len(names))
	for _, name := range names {
		out = append(out, domain.DocumentRecords{
			Document: name,
			Records:  slices.Clone(s.records[name]),
		})
	}
	return out, nil
}

// SaveFinal stores the final ranked result.
func (s *RecordStore) SaveFinal(_ context.Context, result *domain.FinalResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.final = result
	return nil
}

// Final returns the last saved final result, or nil.
func (s *RecordStore) Final() *domain.FinalResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.final
}

// Close is a no-op for the memory store.
func (s *RecordStore) Close() error {
	return nil
}
