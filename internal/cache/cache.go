package cache

import (
	"context"
	"errors"
)

type RecordCache[T any] interface {
	Get(ctx context.Context, key string) (*T, error)
	Set(ctx context.Context, key string, rec *T) error
	Delete(ctx context.Context, key string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache never holds anything. Used when no Redis address is configured.
type NopCache[T any] struct{}

func (NopCache[T]) Get(context.Context, string) (*T, error) {
	return nil, ErrCacheMiss
}

func (NopCache[T]) Set(context.Context, string, *T) error {
	return nil
}

func (NopCache[T]) Delete(context.Context, string) error {
	return nil
}
