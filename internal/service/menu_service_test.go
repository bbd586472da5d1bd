package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/fjod/restaurant/internal/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func margherita() MenuItemInput {
	return MenuItemInput{
		Name:        "Margherita Pizza",
		Price:       decimal.RequireFromString("12.99"),
		Description: strPtr("Classic tomato and mozzarella pizza"),
		Category:    "Pizza",
	}
}

func TestMenuService_Create(t *testing.T) {
	env := setupServices(t)

	item, err := env.menu.Create(context.Background(), margherita())
	require.NoError(t, err)

	assert.NotEmpty(t, item.ItemID)
	assert.Equal(t, "1717245000.123456", item.CreatedAt)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("12.99")))
	assert.Equal(t, []string{events.MenuItemCreated}, env.pub.types())
}

func TestMenuService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*MenuItemInput)
	}{
		{"missing name", func(in *MenuItemInput) { in.Name = " " }},
		{"missing category", func(in *MenuItemInput) { in.Category = "" }},
		{"negative price", func(in *MenuItemInput) { in.Price = decimal.RequireFromString("-1") }},
		{"three decimals", func(in *MenuItemInput) { in.Price = decimal.RequireFromString("1.999") }},
		{"eleven digits", func(in *MenuItemInput) { in.Price = decimal.RequireFromString("123456789.00") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupServices(t)
			in := margherita()
			tt.mutate(&in)

			_, err := env.menu.Create(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, env.pub.types())
		})
	}
}

func TestMenuService_Get_UsesCache(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	created, err := env.menu.Create(ctx, margherita())
	require.NoError(t, err)

	first, err := env.menu.Get(ctx, created.ItemID)
	require.NoError(t, err)
	assert.True(t, env.mr.Exists("menu_items:"+created.ItemID))

	second, err := env.menu.Get(ctx, created.ItemID)
	require.NoError(t, err)

	assert.Equal(t, 1, env.menuStore.getCalls())
	assert.Equal(t, first.Name, second.Name)
	assert.True(t, first.Price.Equal(second.Price))
}

func TestMenuService_Get_NotFound(t *testing.T) {
	env := setupServices(t)

	_, err := env.menu.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMenuService_Get_ConcurrentMissesShareStoreRead(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	created, err := env.menu.Create(ctx, margherita())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := env.menu.Get(ctx, created.ItemID)
			assert.NoError(t, err)
			assert.Equal(t, created.ItemID, got.ItemID)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, env.menuStore.getCalls(), 20)
	assert.GreaterOrEqual(t, env.menuStore.getCalls(), 1)
}

func TestMenuService_Create_LargestPrice(t *testing.T) {
	env := setupServices(t)
	in := margherita()
	in.Price = decimal.RequireFromString("99999999.99")

	item, err := env.menu.Create(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, item.Price.Equal(in.Price))
}

// blockingStore holds Get until release is closed and records the context state it saw.
type blockingStore[T any] struct {
	Store[T]
	started chan struct{}
	release chan struct{}
	once    sync.Once
	mu      sync.Mutex
	ctxErr  error
}

func (s *blockingStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	s.mu.Lock()
	s.ctxErr = ctx.Err()
	s.mu.Unlock()
	return s.Store.Get(ctx, key)
}

func TestMenuService_Get_CancelledCallerDoesNotFailSharedRead(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	created, err := env.menu.Create(ctx, margherita())
	require.NoError(t, err)

	store := &blockingStore[domain.MenuItem]{
		Store:   env.menuStore,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	env.menu.rec.store = store

	callerCtx, cancel := context.WithCancel(ctx)
	firstErr := make(chan error, 1)
	go func() {
		_, err := env.menu.Get(callerCtx, created.ItemID)
		firstErr <- err
	}()
	<-store.started

	second := make(chan error, 1)
	go func() {
		got, err := env.menu.Get(ctx, created.ItemID)
		if err == nil && got.ItemID != created.ItemID {
			err = errors.New("unexpected item " + got.ItemID)
		}
		second <- err
	}()

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(store.release)
	assert.NoError(t, <-second)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NoError(t, store.ctxErr)
}

func TestMenuService_Patch_InvalidatesCache(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	created, err := env.menu.Create(ctx, margherita())
	require.NoError(t, err)
	_, err = env.menu.Get(ctx, created.ItemID)
	require.NoError(t, err)

	price := decimal.RequireFromString("13.49")
	patched, err := env.menu.Patch(ctx, created.ItemID, MenuItemPatch{Price: &price})
	require.NoError(t, err)
	assert.True(t, patched.Price.Equal(price))
	assert.Equal(t, created.Name, patched.Name)
	assert.Equal(t, created.CreatedAt, patched.CreatedAt)
	assert.False(t, env.mr.Exists("menu_items:"+created.ItemID))

	got, err := env.menu.Get(ctx, created.ItemID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(price))
	assert.Equal(t, []string{events.MenuItemCreated, events.MenuItemUpdated}, env.pub.types())
}

func TestMenuService_Patch_Empty(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	created, err := env.menu.Create(ctx, margherita())
	require.NoError(t, err)

	_, err = env.menu.Patch(ctx, created.ItemID, MenuItemPatch{})
	assert.ErrorIs(t, err, domain.ErrEmptyUpdate)
}

func TestMenuService_Patch_MissingItem(t *testing.T) {
	env := setupServices(t)
	name := "Calzone"

	_, err := env.menu.Patch(context.Background(), "missing", MenuItemPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, env.pub.types())
}

func TestMenuService_Replace(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	created, err := env.menu.Create(ctx, margherita())
	require.NoError(t, err)

	in := MenuItemInput{
		Name:     "Marinara Pizza",
		Price:    decimal.RequireFromString("10.50"),
		Category: "Pizza",
	}
	replaced, err := env.menu.Replace(ctx, created.ItemID, in)
	require.NoError(t, err)

	assert.Equal(t, "Marinara Pizza", replaced.Name)
	assert.True(t, replaced.Price.Equal(decimal.RequireFromString("10.5")))
	require.NotNil(t, replaced.Description)
	assert.Equal(t, *created.Description, *replaced.Description)
	assert.Equal(t, created.CreatedAt, replaced.CreatedAt)
}

func TestMenuService_Replace_MissingItem(t *testing.T) {
	env := setupServices(t)

	_, err := env.menu.Replace(context.Background(), "missing", margherita())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMenuService_Delete(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	created, err := env.menu.Create(ctx, margherita())
	require.NoError(t, err)
	_, err = env.menu.Get(ctx, created.ItemID)
	require.NoError(t, err)

	require.NoError(t, env.menu.Delete(ctx, created.ItemID))
	assert.False(t, env.mr.Exists("menu_items:"+created.ItemID))

	_, err = env.menu.Get(ctx, created.ItemID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.menu.Delete(ctx, created.ItemID), domain.ErrNotFound)
	assert.Equal(t, []string{events.MenuItemCreated, events.MenuItemDeleted}, env.pub.types())
}

func TestMenuService_PublishFailureDoesNotFailWrite(t *testing.T) {
	env := setupServices(t)
	env.pub.err = errors.New("broker down")

	item, err := env.menu.Create(context.Background(), margherita())
	require.NoError(t, err)
	assert.NotEmpty(t, item.ItemID)
}

func TestMenuService_CacheDownFallsBackToStore(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	created, err := env.menu.Create(ctx, margherita())
	require.NoError(t, err)

	env.mr.Close()

	got, err := env.menu.Get(ctx, created.ItemID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
}
