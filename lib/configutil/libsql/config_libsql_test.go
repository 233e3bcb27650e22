package configlibsql

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

func TestOpenDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := Struct{File: path}.OpenDB(testSchema)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO kv (key, value) VALUES ('a', 'b')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := Struct{File: path}.OpenDB(testSchema)
	require.NoError(t, err)
	defer reopened.Close()

	var value string
	err = reopened.QueryRow("SELECT value FROM kv WHERE key = 'a'").Scan(&value)
	require.NoError(t, err)
	require.Equal(t, "b", value)
}

func TestOpenDBMemory(t *testing.T) {
	db, err := Struct{File: ":memory:"}.OpenDB(testSchema)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("INSERT INTO kv (key, value) VALUES ('x', 'y')")
	require.NoError(t, err)
}

func TestOpenDBRequiresTarget(t *testing.T) {
	_, err := Struct{}.OpenDB(testSchema)
	require.Error(t, err)
}
