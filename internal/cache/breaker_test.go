package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyCache struct {
	mu      sync.Mutex
	fail    bool
	gets    int
	sets    int
	deletes int
}

var errBoom = errors.New("connection refused")

func (f *flakyCache) Get(context.Context, string) (*domain.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.fail {
		return nil, errBoom
	}
	return nil, ErrCacheMiss
}

func (f *flakyCache) Set(context.Context, string, *domain.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.fail {
		return errBoom
	}
	return nil
}

func (f *flakyCache) Delete(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.fail {
		return errBoom
	}
	return nil
}

func TestBreakerCache_MissesDoNotTrip(t *testing.T) {
	inner := &flakyCache{}
	c := NewBreakerCache[domain.MenuItem]("test", inner, nil)

	for i := 0; i < 20; i++ {
		_, err := c.Get(context.Background(), "item-1")
		assert.ErrorIs(t, err, ErrCacheMiss)
	}
	assert.Equal(t, gobreaker.StateClosed, c.State())
	assert.Equal(t, 20, inner.gets)
}

func TestBreakerCache_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyCache{fail: true}
	var transitions []gobreaker.State
	c := NewBreakerCache[domain.MenuItem]("test", inner, func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.Get(ctx, "item-1")
		assert.ErrorIs(t, err, errBoom)
	}
	require.Equal(t, gobreaker.StateOpen, c.State())
	assert.Equal(t, []gobreaker.State{gobreaker.StateOpen}, transitions)

	// open breaker: reads degrade to misses, writes are skipped
	_, err := c.Get(ctx, "item-1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Set(ctx, "item-1", sampleItem()))
	assert.Equal(t, 5, inner.gets)
	assert.Equal(t, 0, inner.sets)
}

func TestBreakerCache_DeleteBypassesBreaker(t *testing.T) {
	inner := &flakyCache{fail: true}
	c := NewBreakerCache[domain.MenuItem]("test", inner, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = c.Get(ctx, "item-1")
	}
	require.Equal(t, gobreaker.StateOpen, c.State())

	assert.ErrorIs(t, c.Delete(ctx, "item-1"), errBoom)
	assert.Equal(t, 1, inner.deletes)
}
