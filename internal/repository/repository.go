package repository

import (
	"context"
	"errors"
)

var ErrDuplicateKey = errors.New("record key already exists")

// Backend is the key-value protocol a store must provide. Update receives only allow-listed
// fields of fam and must set each of them on the existing record without touching the rest;
// it reports domain.ErrNotFound instead of creating a missing record.
type Backend interface {
	Put(ctx context.Context, fam Family, doc Document) error
	Get(ctx context.Context, fam Family, key string) (Document, bool, error)
	Update(ctx context.Context, fam Family, key string, set Document) (Document, error)
	Delete(ctx context.Context, fam Family, key string) error
	Scan(ctx context.Context, fam Family) ([]Document, error)
}

// Codec maps a domain record to and from its Document form.
type Codec[T any] interface {
	Encode(rec T) Document
	Decode(doc Document) (T, error)
	SetKey(rec *T, key string)
}

// Patch maps field names to new values. Nil values mean "not supplied" and are skipped;
// a patch cannot clear a field.
type Patch map[string]any
