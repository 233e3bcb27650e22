package bookmark

import (
	"context"
	"cookclip/lib/platforms/clipstore"
	"cookclip/lib/platforms/clipstore/clipstoretest"
	"cookclip/lib/platforms/foodsafety"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var rows = []foodsafety.Recipe{
	{ID: "1", Title: "김치찌개"},
	{ID: "2", Title: "된장찌개"},
	{ID: "3", Title: "두부조림"},
}

func TestReconcile(t *testing.T) {
	clips := []clipstore.Clip{
		{ID: "10", UID: "other", RecipeID: "1", Comment: "not mine"},
		{ID: "11", UID: "me", RecipeID: "2", Comment: "first"},
		{ID: "12", UID: "me", RecipeID: "2", Comment: "duplicate"},
		{ID: "13", UID: "me", RecipeID: "99", Comment: "not on this page"},
	}

	got := Reconcile(rows, clips, "me")
	expected := []View{
		{Recipe: rows[0]},
		{Recipe: rows[1], IsBookmarked: true, ClipID: "11", Comment: "first"},
		{Recipe: rows[2]},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Fatal("(-expected +got)\n", diff)
	}

	require.Len(t, Reconcile(nil, clips, "me"), 0)
	for _, v := range Reconcile(rows, nil, "me") {
		require.False(t, v.IsBookmarked)
	}
	for _, v := range Reconcile(rows, clips, "") {
		require.False(t, v.IsBookmarked)
	}
}

func TestFindAndOwned(t *testing.T) {
	clips := []clipstore.Clip{
		{ID: "1", UID: "a", RecipeID: "5"},
		{ID: "2", UID: "b", RecipeID: "5"},
		{ID: "3", UID: "a", RecipeID: "6"},
	}
	require.Len(t, Owned(clips, "a"), 2)

	clip, ok := Find(clips, "b", "5")
	require.True(t, ok)
	require.Equal(t, "2", clip.ID)

	_, ok = Find(clips, "b", "6")
	require.False(t, ok)
}

func TestAddThenToggle(t *testing.T) {
	srv := clipstoretest.NewServer(t)
	store := srv.Client()
	ctx := context.Background()

	outcome, err := Toggle(ctx, store, View{Recipe: rows[0]}, "me")
	require.NoError(t, err)
	require.Equal(t, OutcomeOpenForCreate, outcome)
	require.Zero(t, srv.Calls(http.MethodGet))

	created, err := Add(ctx, store, "me", "1", "맛있다")
	require.NoError(t, err)

	// adding again updates instead of duplicating
	again, err := Add(ctx, store, "me", "1", "또 먹고 싶다")
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
	require.Len(t, srv.Clips(), 1)
	require.Equal(t, "또 먹고 싶다", srv.Clips()[0].Comment)

	clips, err := store.List(ctx)
	require.NoError(t, err)
	view := Reconcile(rows[:1], clips, "me")[0]
	require.True(t, view.IsBookmarked)

	outcome, err = Toggle(ctx, store, view, "me")
	require.NoError(t, err)
	require.Equal(t, OutcomeRemoved, outcome)
	require.Empty(t, Owned(srv.Clips(), "me"))
}

func TestToggleSweepsDuplicates(t *testing.T) {
	srv := clipstoretest.NewServer(
		t,
		clipstore.Clip{UID: "me", RecipeID: "1"},
		clipstore.Clip{UID: "me", RecipeID: "1"},
		clipstore.Clip{UID: "other", RecipeID: "1"},
	)
	store := srv.Client()
	ctx := context.Background()

	clips, err := store.List(ctx)
	require.NoError(t, err)
	view := Reconcile(rows[:1], clips, "me")[0]

	_, err = Toggle(ctx, store, view, "me")
	require.NoError(t, err)
	require.Equal(t, []clipstore.Clip{{ID: "3", UID: "other", RecipeID: "1"}}, srv.Clips())
}

func TestRemove(t *testing.T) {
	srv := clipstoretest.NewServer(
		t,
		clipstore.Clip{UID: "me", RecipeID: "1"},
		clipstore.Clip{UID: "me", RecipeID: "2"},
		clipstore.Clip{UID: "me", RecipeID: "1"},
	)
	ctx := context.Background()

	removed, err := Remove(ctx, srv.Client(), "me", "1")
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	require.Len(t, srv.Clips(), 1)

	removed, err = Remove(ctx, srv.Client(), "me", "1")
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestDedupe(t *testing.T) {
	srv := clipstoretest.NewServer(
		t,
		clipstore.Clip{ID: "9", UID: "me", RecipeID: "1", Comment: "old"},
		clipstore.Clip{ID: "10", UID: "me", RecipeID: "1", Comment: "new"},
		clipstore.Clip{ID: "11", UID: "me", RecipeID: "2"},
		clipstore.Clip{ID: "12", UID: "other", RecipeID: "2"},
		clipstore.Clip{ID: "13", UID: "other", RecipeID: "2"},
	)

	deleted, err := Dedupe(context.Background(), srv.Client(), "me")
	require.NoError(t, err)
	require.Equal(t, []clipstore.Clip{{ID: "9", UID: "me", RecipeID: "1", Comment: "old"}}, deleted)

	remaining := Owned(srv.Clips(), "me")
	require.Len(t, remaining, 2)
	require.Equal(t, "new", remaining[0].Comment)
	// other visitors are untouched
	require.Len(t, Owned(srv.Clips(), "other"), 2)
}

func TestNewer(t *testing.T) {
	require.True(t, newer(clipstore.Clip{ID: "10"}, clipstore.Clip{ID: "9"}))
	require.False(t, newer(clipstore.Clip{ID: "9"}, clipstore.Clip{ID: "10"}))
	require.True(t, newer(clipstore.Clip{ID: "b"}, clipstore.Clip{ID: "a"}))
}

type failingStore struct {
	ClipStore
	err error
}

func (s failingStore) List(ctx context.Context) ([]clipstore.Clip, error) {
	return nil, s.err
}

func TestStoreFailure(t *testing.T) {
	store := failingStore{err: errors.New("offline")}
	ctx := context.Background()

	_, err := Add(ctx, store, "me", "1", "")
	require.ErrorIs(t, err, store.err)
	_, err = Remove(ctx, store, "me", "1")
	require.ErrorIs(t, err, store.err)
	_, err = Dedupe(ctx, store, "me")
	require.ErrorIs(t, err, store.err)
}
