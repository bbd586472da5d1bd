package repository

import (
	"context"
	"fmt"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/google/uuid"
)

// RecordStore persists one record family through a Backend.
type RecordStore[T any] struct {
	backend Backend
	family  Family
	codec   Codec[T]
	newKey  func() string
}

func NewRecordStore[T any](backend Backend, family Family, codec Codec[T]) *RecordStore[T] {
	return &RecordStore[T]{
		backend: backend,
		family:  family,
		codec:   codec,
		newKey:  uuid.NewString,
	}
}

func (s *RecordStore[T]) Family() Family {
	return s.family
}

// Create assigns a fresh random key to rec and writes the whole record in one put.
func (s *RecordStore[T]) Create(ctx context.Context, rec T) (T, error) {
	s.codec.SetKey(&rec, s.newKey())
	if err := s.backend.Put(ctx, s.family, s.codec.Encode(rec)); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// Get reports ok=false when key is absent; err is reserved for store failures.
func (s *RecordStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T
	doc, ok, err := s.backend.Get(ctx, s.family, key)
	if err != nil || !ok {
		return zero, false, err
	}
	rec, err := s.codec.Decode(doc)
	if err != nil {
		return zero, false, fmt.Errorf("decode %s %s: %w", s.family.Name, key, err)
	}
	return rec, true, nil
}

// MergeUpdate sets every non-nil field of patch on the stored record and returns the record
// as persisted afterwards. Fields outside the family allow-list are rejected.
func (s *RecordStore[T]) MergeUpdate(ctx context.Context, key string, patch Patch) (T, error) {
	var zero T
	set, err := s.filterPatch(patch)
	if err != nil {
		return zero, err
	}

	doc, err := s.backend.Update(ctx, s.family, key, set)
	if err != nil {
		return zero, err
	}
	rec, err := s.codec.Decode(doc)
	if err != nil {
		return zero, fmt.Errorf("decode %s %s: %w", s.family.Name, key, err)
	}
	return rec, nil
}

func (s *RecordStore[T]) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.family, key)
}

// ScanAll returns every record of the family in no particular order.
func (s *RecordStore[T]) ScanAll(ctx context.Context) ([]T, error) {
	docs, err := s.backend.Scan(ctx, s.family)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := s.codec.Decode(doc)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.family.Name, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *RecordStore[T]) filterPatch(patch Patch) (Document, error) {
	set := make(Document, len(patch))
	for name, value := range patch {
		v, err := normalize(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		if v == nil {
			continue
		}
		set[name] = v
	}
	if len(set) == 0 {
		return nil, domain.ErrEmptyUpdate
	}
	for name := range set {
		if _, ok := s.family.Field(name); !ok {
			return nil, fmt.Errorf("%w: %s.%s", domain.ErrUnknownField, s.family.Name, name)
		}
	}
	return set, nil
}
