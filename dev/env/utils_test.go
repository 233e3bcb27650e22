package devenv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	plain, err := ResolvePath("some/relative.db")
	require.NoError(t, err)
	require.Equal(t, "some/relative.db", plain)

	dir, err := StateDir()
	require.NoError(t, err)

	resolved, err := ResolvePath("<dev_state>/identity.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "identity.db"), resolved)

	nested, err := ResolvePath("<dev_state>/resty/catalog")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "resty", "catalog"), nested)
}

func TestWorkspaceRoot(t *testing.T) {
	root, err := GetWorkspaceRoot()
	require.NoError(t, err)
	require.True(t, isWorkspaceRoot(root))
	require.False(t, isWorkspaceRoot(t.TempDir()))
}
