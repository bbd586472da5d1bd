package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/restaurant/internal/cache"
	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/events"
	"github.com/fjod/restaurant/internal/repository"
	"golang.org/x/sync/singleflight"
)

// Store is the slice of repository.RecordStore the services depend on.
type Store[T any] interface {
	Create(ctx context.Context, rec T) (T, error)
	Get(ctx context.Context, key string) (T, bool, error)
	MergeUpdate(ctx context.Context, key string, patch repository.Patch) (T, error)
	Delete(ctx context.Context, key string) error
	ScanAll(ctx context.Context) ([]T, error)
}

const (
	invalidateTimeout = time.Second
	sharedReadTimeout = 10 * time.Second
)

// records bundles a store with its read-through cache and event stream.
type records[T any] struct {
	kind   string
	store  Store[T]
	cache  cache.RecordCache[T]
	events events.Publisher
	logger *slog.Logger
	sfg    singleflight.Group // Prevents cache stampede
}

// get reads through the cache. Callers sharing a flight each honor their own ctx; the shared
// read runs detached from any single caller and is bounded by sharedReadTimeout.
// A read that loses a race with a write may cache the pre-write record until its TTL expires.
func (r *records[T]) get(ctx context.Context, key string) (T, error) {
	var zero T
	ch := r.sfg.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedReadTimeout)
		defer cancel()

		cached, err := r.cache.Get(ctx, key)
		if err == nil {
			return *cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Warn("cache get failed", "kind", r.kind, "key", key, "error", err)
		}

		rec, ok, err := r.store.Get(ctx, key)
		if err != nil {
			r.logger.Error("store get failed", "kind", r.kind, "key", key, "error", err)
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, r.kind, key)
		}

		if err := r.cache.Set(ctx, key, &rec); err != nil {
			r.logger.Warn("cache set failed", "kind", r.kind, "key", key, "error", err)
		}
		return rec, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// mustExist is get without the cache, for write paths that need the stored state.
func (r *records[T]) mustExist(ctx context.Context, key string) (T, error) {
	rec, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Error("store get failed", "kind", r.kind, "key", key, "error", err)
		return rec, err
	}
	if !ok {
		return rec, fmt.Errorf("%w: %s %s", domain.ErrNotFound, r.kind, key)
	}
	return rec, nil
}

func (r *records[T]) list(ctx context.Context) ([]T, error) {
	recs, err := r.store.ScanAll(ctx)
	if err != nil {
		r.logger.Error("store scan failed", "kind", r.kind, "error", err)
		return nil, err
	}
	return recs, nil
}

func (r *records[T]) create(ctx context.Context, rec T, key func(T) string, eventType string) (T, error) {
	created, err := r.store.Create(ctx, rec)
	if err != nil {
		r.logger.Error("store create failed", "kind", r.kind, "error", err)
		return created, err
	}
	k := key(created)
	r.logger.Info("record created", "kind", r.kind, "key", k)
	r.publish(ctx, eventType, k, created)
	return created, nil
}

func (r *records[T]) merge(ctx context.Context, key string, patch repository.Patch, eventType string) (T, error) {
	updated, err := r.store.MergeUpdate(ctx, key, patch)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			r.logger.Error("store update failed", "kind", r.kind, "key", key, "error", err)
		}
		return updated, err
	}
	r.invalidate(key)
	r.publish(ctx, eventType, key, updated)
	return updated, nil
}

func (r *records[T]) remove(ctx context.Context, key string, eventType string) error {
	if err := r.store.Delete(ctx, key); err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			r.logger.Error("store delete failed", "kind", r.kind, "key", key, "error", err)
		}
		return err
	}
	r.invalidate(key)
	r.logger.Info("record deleted", "kind", r.kind, "key", key)
	r.publish(ctx, eventType, key, nil)
	return nil
}

func (r *records[T]) invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("cache invalidate failed", "kind", r.kind, "key", key, "error", err)
	}
}

// publish never fails the caller: events are best effort.
func (r *records[T]) publish(ctx context.Context, eventType, key string, rec any) {
	evt := events.Event{
		Type:       eventType,
		Key:        key,
		Record:     rec,
		OccurredAt: time.Now().UTC(),
	}
	if err := r.events.Publish(ctx, evt); err != nil {
		r.logger.Warn("event publish failed", "type", eventType, "key", key, "error", err)
	}
}
