package identity

import (
	"context"
	configlibsql "cookclip/lib/configutil/libsql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openStore(t testing.TB, file string) SqliteStore {
	db, err := configlibsql.Struct{File: file}.OpenDB(Schema)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSqliteStore(db)
}

func TestSqliteStoreIdempotent(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "identity.db")

	store := openStore(t, file)
	_, err := store.Get(ctx)
	require.ErrorIs(t, err, ErrNoIdentity)

	first, err := store.GetOrCreate(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := store.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)

	reopened := openStore(t, file)
	third, err := reopened.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, first, third)

	got, err := reopened.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, first, got)
}

func TestSqliteStoreKeepsExistingValue(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, ":memory:")

	_, err := store.db.Exec("insert into identity (key, value) values ('uid', 'legacy-uid')")
	require.NoError(t, err)

	value, err := store.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, "legacy-uid", value)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	empty := NewMemoryStore("")
	_, err := empty.Get(ctx)
	require.ErrorIs(t, err, ErrNoIdentity)
	first, err := empty.GetOrCreate(ctx)
	require.NoError(t, err)
	second, err := empty.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)

	preset := NewMemoryStore("fixed")
	value, err := preset.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, "fixed", value)
}
