package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerCache short-circuits reads and writes to a failing cache so requests fall back to
// the store without waiting on Redis timeouts.
type BreakerCache[T any] struct {
	next RecordCache[T]
	cb   *gobreaker.CircuitBreaker[*T]
}

func NewBreakerCache[T any](name string, next RecordCache[T], onStateChange func(name string, from, to gobreaker.State)) *BreakerCache[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCacheMiss)
		},
		OnStateChange: onStateChange,
	}
	return &BreakerCache[T]{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*T](settings),
	}
}

// Get reports a miss while the breaker is open.
func (b *BreakerCache[T]) Get(ctx context.Context, key string) (*T, error) {
	rec, err := b.cb.Execute(func() (*T, error) {
		return b.next.Get(ctx, key)
	})
	if isOpen(err) {
		return nil, ErrCacheMiss
	}
	return rec, err
}

// Set is skipped while the breaker is open.
func (b *BreakerCache[T]) Set(ctx context.Context, key string, rec *T) error {
	_, err := b.cb.Execute(func() (*T, error) {
		return nil, b.next.Set(ctx, key, rec)
	})
	if isOpen(err) {
		return nil
	}
	return err
}

// Delete always reaches the cache: a skipped invalidation would serve stale records once
// the breaker closes again.
func (b *BreakerCache[T]) Delete(ctx context.Context, key string) error {
	return b.next.Delete(ctx, key)
}

func (b *BreakerCache[T]) State() gobreaker.State {
	return b.cb.State()
}

func isOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
