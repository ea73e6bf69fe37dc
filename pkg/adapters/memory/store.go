package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

// Store implements ports.ResultStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Record
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Record),
	}
}

// Save keeps a copy of the record.
func (s *Store) Save(ctx context.Context, rec *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.ID] = *rec
	return nil
}

// Load returns a copy so callers cannot mutate the stored record.
func (s *Store) Load(ctx context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id]
	if !ok {
		return nil, domain.ErrResultNotFound
	}
	return &rec, nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns record IDs, newest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	recs := make([]domain.Record, 0, len(s.data))
	for _, r := range s.data {
		recs = append(recs, r)
	}
	s.mu.RUnlock()

	return sortedIDs(recs), nil
}

func sortedIDs(recs []domain.Record) []string {
	slices.SortFunc(recs, func(a, b domain.Record) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}
