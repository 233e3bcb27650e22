package catalogcache

import (
	"context"
	"cookclip/lib/platforms/foodsafety"
	"cookclip/lib/platforms/foodsafety/foodsafetytest"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	rows  []foodsafety.Recipe
	err   error
	calls atomic.Int64
}

func (s *countingSource) FetchFullCatalog(ctx context.Context) ([]foodsafety.Recipe, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *countingSource) FullCatalogURL() string {
	return "https://openapi.foodsafetykorea.go.kr/api/k/COOKRCP01/json/1/300"
}

func TestKey(t *testing.T) {
	require.Equal(t, Key("http://example.com/a/b"), Key("HTTP://Example.com:80/a/./b"))
	require.Equal(t, Key("https://x.org/api?b=2&a=1"), Key("https://x.org/api?a=1&b=2"))
}

func TestMemoryCache(t *testing.T) {
	source := &countingSource{rows: foodsafetytest.Recipes(3)}
	cache := New(source, NewMemoryBackend(time.Hour))
	ctx := context.Background()

	first, err := cache.Full(ctx)
	require.NoError(t, err)
	second, err := cache.Full(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, source.calls.Load())
	require.Equal(t, Stats{Hits: 1, Misses: 1}, cache.Stats())

	recipe, err := cache.Lookup(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, "recipe 2", recipe.Title)

	_, err = cache.Lookup(ctx, "404")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.Full(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, source.calls.Load())
}

func TestMemoryCacheExpiry(t *testing.T) {
	source := &countingSource{rows: foodsafetytest.Recipes(1)}
	cache := New(source, NewMemoryBackend(20*time.Millisecond))
	ctx := context.Background()

	_, err := cache.Full(ctx)
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = cache.Full(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, source.calls.Load())
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	source := &countingSource{err: errors.New("offline")}
	cache := New(source, NewMemoryBackend(time.Hour))
	ctx := context.Background()

	_, err := cache.Full(ctx)
	require.ErrorIs(t, err, source.err)

	source.err = nil
	source.rows = foodsafetytest.Recipes(2)
	rows, err := cache.Full(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

// gatedSource blocks every fetch until release is closed.
type gatedSource struct {
	rows    []foodsafety.Recipe
	release chan struct{}
	calls   atomic.Int64
}

func (s *gatedSource) FetchFullCatalog(ctx context.Context) ([]foodsafety.Recipe, error) {
	s.calls.Add(1)
	select {
	case <-s.release:
		return s.rows, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *gatedSource) FullCatalogURL() string {
	return "https://openapi.foodsafetykorea.go.kr/api/k/COOKRCP01/json/1/300"
}

type fullResult struct {
	rows []foodsafety.Recipe
	err  error
}

func fullAsync(ctx context.Context, cache *Cache) <-chan fullResult {
	out := make(chan fullResult, 1)
	go func() {
		rows, err := cache.Full(ctx)
		out <- fullResult{rows: rows, err: err}
	}()
	return out
}

// waitForMisses returns once n callers have missed and had time to join
// the in-flight fill.
func waitForMisses(t *testing.T, cache *Cache, n int64) {
	require.Eventually(t, func() bool {
		return cache.Stats().Misses == n
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
}

func TestConcurrentMissesShareFetch(t *testing.T) {
	source := &gatedSource{rows: foodsafetytest.Recipes(5), release: make(chan struct{})}
	cache := New(source, NewMemoryBackend(time.Hour))

	var results []<-chan fullResult
	for i := 0; i < 8; i++ {
		results = append(results, fullAsync(context.Background(), cache))
	}
	waitForMisses(t, cache, 8)
	close(source.release)

	for _, ch := range results {
		res := <-ch
		require.NoError(t, res.err)
		require.Len(t, res.rows, 5)
	}
	require.EqualValues(t, 1, source.calls.Load())
}

func TestCancelledCallerDoesNotFailOthers(t *testing.T) {
	source := &gatedSource{rows: foodsafetytest.Recipes(3), release: make(chan struct{})}
	cache := New(source, NewMemoryBackend(time.Hour))

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := fullAsync(leaderCtx, cache)
	require.Eventually(t, func() bool {
		return source.calls.Load() == 1
	}, time.Second, time.Millisecond)
	follower := fullAsync(context.Background(), cache)
	waitForMisses(t, cache, 2)

	cancel()
	res := <-leader
	require.ErrorIs(t, res.err, context.Canceled)

	close(source.release)
	res = <-follower
	require.NoError(t, res.err)
	require.Len(t, res.rows, 3)
	require.EqualValues(t, 1, source.calls.Load())

	// the fill completed and was stored even though its starter left
	_, err := cache.Full(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, source.calls.Load())
}

func TestBadgerCache(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	catalog := foodsafetytest.Recipes(4)
	catalog[0].StepText[0] = "1. 준비한다."
	source := &countingSource{rows: catalog}
	cache := New(source, NewBadgerBackend(db, time.Hour))
	ctx := context.Background()

	_, err = cache.Full(ctx)
	require.NoError(t, err)
	cached, err := cache.Full(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(catalog, cached); diff != "" {
		t.Fatal("(-expected +got)\n", diff)
	}
	require.EqualValues(t, 1, source.calls.Load())

	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.Full(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, source.calls.Load())
}

func TestBadgerBackendPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := OpenBadger(dir)
	require.NoError(t, err)
	err = NewBadgerBackend(db, time.Hour).Set(ctx, "k", foodsafetytest.Recipes(2))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenBadger(dir)
	require.NoError(t, err)
	defer db.Close()
	rows, ok, err := NewBadgerBackend(db, time.Hour).Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, rows, 2)

	_, ok, err = NewBadgerBackend(db, time.Hour).Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}
