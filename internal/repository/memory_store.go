package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/restaurant/internal/domain"
)

// MemoryStore implements Backend with in-memory maps. Documents are copied on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	families map[string]map[string]Document // family name -> key -> document
}

// NewMemoryStore creates an empty in-memory backend
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		families: make(map[string]map[string]Document),
	}
}

func (s *MemoryStore) Put(ctx context.Context, fam Family, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := getString(doc, fam.Key)
	if err != nil || key == "" {
		return fmt.Errorf("%w: %s record without %s", domain.ErrValidation, fam.Name, fam.Key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.records(fam)
	if _, exists := records[key]; exists {
		return fmt.Errorf("%w: %s %s", ErrDuplicateKey, fam.Name, key)
	}
	records[key] = doc.Clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, fam Family, key string) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, exists := s.families[fam.Name][key]
	if !exists {
		return nil, false, nil
	}
	return doc.Clone(), true, nil
}

// Update assigns each field under the write lock, so concurrent updates of disjoint fields
// never lose each other's writes.
func (s *MemoryStore) Update(ctx context.Context, fam Family, key string, set Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, exists := s.families[fam.Name][key]
	if !exists {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, fam.Name, key)
	}
	for name := range set {
		if _, ok := fam.Field(name); !ok {
			return nil, fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, fam.Name, name)
		}
	}
	for name, value := range set {
		doc[name] = cloneValue(value)
	}
	return doc.Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, fam Family, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.families[fam.Name]
	if _, exists := records[key]; !exists {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, fam.Name, key)
	}
	delete(records, key)
	return nil
}

func (s *MemoryStore) Scan(ctx context.Context, fam Family) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.families[fam.Name]
	out := make([]Document, 0, len(records))
	for _, doc := range records {
		out = append(out, doc.Clone())
	}
	return out, nil
}

func (s *MemoryStore) records(fam Family) map[string]Document {
	records, ok := s.families[fam.Name]
	if !ok {
		records = make(map[string]Document)
		s.families[fam.Name] = records
	}
	return records
}
