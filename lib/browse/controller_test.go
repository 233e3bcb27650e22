package browse

import (
	"context"
	"cookclip/lib/platforms/foodsafety"
	"cookclip/lib/platforms/foodsafety/foodsafetytest"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// sliceFetcher pages over an in-memory catalog, filtering titles by term.
func sliceFetcher(catalog []foodsafety.Recipe) FetchFunc {
	return func(ctx context.Context, start, size int, query foodsafety.Query) ([]foodsafety.Recipe, error) {
		var matching []foodsafety.Recipe
		for _, r := range catalog {
			if strings.Contains(r.Title, query.Term) {
				matching = append(matching, r)
			}
		}
		var out []foodsafety.Recipe
		for i := start - 1; i < start-1+size && i < len(matching); i++ {
			out = append(out, matching[i])
		}
		return out, nil
	}
}

func loadAll(t *testing.T, c *Controller) int {
	loads := 0
	for c.HasNext() {
		loaded, err := c.LoadNext(context.Background())
		require.NoError(t, err)
		require.True(t, loaded)
		loads++
		require.Less(t, loads, 100)
	}
	return loads
}

func TestPaginationTerminates(t *testing.T) {
	cases := []struct {
		n, size, loads int
	}{
		{n: 0, size: 30, loads: 1},
		{n: 1, size: 30, loads: 1},
		{n: 45, size: 30, loads: 2},
		// a full final page needs one more empty load to notice the end
		{n: 60, size: 30, loads: 3},
		{n: 7, size: 3, loads: 3},
	}
	for _, tc := range cases {
		catalog := foodsafetytest.Recipes(tc.n)
		c := NewController(sliceFetcher(catalog), tc.size, foodsafety.Query{})

		require.Equal(t, tc.loads, loadAll(t, c), "n=%d size=%d", tc.n, tc.size)
		require.Equal(t, len(catalog), len(c.Items()))
		for i, r := range c.Items() {
			require.Equal(t, catalog[i].ID, r.ID)
		}
		require.Zero(t, c.NextOffset())

		loaded, err := c.LoadNext(context.Background())
		require.NoError(t, err)
		require.False(t, loaded)
	}
}

func TestLoadNextOffsets(t *testing.T) {
	var offsets []int
	inner := sliceFetcher(foodsafetytest.Recipes(70))
	c := NewController(FetchFunc(func(ctx context.Context, start, size int, query foodsafety.Query) ([]foodsafety.Recipe, error) {
		offsets = append(offsets, start)
		return inner(ctx, start, size, query)
	}), 30, foodsafety.Query{})

	loadAll(t, c)
	require.Equal(t, []int{1, 31, 61}, offsets)
	require.Equal(t, 3, c.Pages())
}

func TestLoadNextError(t *testing.T) {
	fail := true
	inner := sliceFetcher(foodsafetytest.Recipes(5))
	c := NewController(FetchFunc(func(ctx context.Context, start, size int, query foodsafety.Query) ([]foodsafety.Recipe, error) {
		if fail {
			return nil, errors.New("offline")
		}
		return inner(ctx, start, size, query)
	}), 30, foodsafety.Query{})

	_, err := c.LoadNext(context.Background())
	require.Error(t, err)
	require.True(t, c.HasNext())
	require.Empty(t, c.Items())

	fail = false
	loaded, err := c.LoadNext(context.Background())
	require.NoError(t, err)
	require.True(t, loaded)
	require.Len(t, c.Items(), 5)
}

type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() gate {
	return gate{started: make(chan struct{}), release: make(chan struct{})}
}

// blockingFetcher blocks requests for terms that have a gate until the gate
// is released.
func blockingFetcher(catalog []foodsafety.Recipe, gates map[string]gate) FetchFunc {
	inner := sliceFetcher(catalog)
	return func(ctx context.Context, start, size int, query foodsafety.Query) ([]foodsafety.Recipe, error) {
		if g, ok := gates[query.Term]; ok {
			close(g.started)
			<-g.release
		}
		return inner(ctx, start, size, query)
	}
}

func TestSetQueryResetsImmediately(t *testing.T) {
	catalog := []foodsafety.Recipe{
		{ID: "1", Title: "김치찌개"},
		{ID: "2", Title: "된장찌개"},
		{ID: "3", Title: "김치볶음밥"},
	}
	g := newGate()
	c := NewController(blockingFetcher(catalog, map[string]gate{"김치": g}), 30, foodsafety.Query{})
	_, err := c.LoadNext(context.Background())
	require.NoError(t, err)
	require.Len(t, c.Items(), 3)

	done := make(chan error)
	go func() {
		done <- c.SetQuery(context.Background(), foodsafety.Query{Term: "김치"})
	}()

	<-g.started
	require.Empty(t, c.Items())
	require.Equal(t, "김치", c.Query().Term)

	close(g.release)
	require.NoError(t, <-done)
	items := c.Items()
	require.Len(t, items, 2)
	require.Equal(t, "1", items[0].ID)
	require.Equal(t, "3", items[1].ID)
}

func TestStaleResponseDiscarded(t *testing.T) {
	catalog := []foodsafety.Recipe{
		{ID: "1", Title: "김치찌개"},
		{ID: "2", Title: "된장찌개"},
	}
	slow := newGate()
	c := NewController(blockingFetcher(catalog, map[string]gate{"김치": slow}), 30, foodsafety.Query{Term: "김치"})

	type result struct {
		loaded bool
		err    error
	}
	done := make(chan result)
	go func() {
		loaded, err := c.LoadNext(context.Background())
		done <- result{loaded, err}
	}()
	<-slow.started

	require.NoError(t, c.SetQuery(context.Background(), foodsafety.Query{Term: "된장"}))
	close(slow.release)

	res := <-done
	require.NoError(t, res.err)
	require.False(t, res.loaded)

	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, "2", items[0].ID)
}

func TestPageSizeAboveBatchLimit(t *testing.T) {
	srv := foodsafetytest.NewServer(t, foodsafetytest.Recipes(700))
	c := NewController(srv.Client(t), 500, foodsafety.Query{})

	// 300 + 300 + 100
	require.Equal(t, 3, loadAll(t, c))
	items := c.Items()
	require.Len(t, items, 700)
	require.Equal(t, "700", items[699].ID)
}
