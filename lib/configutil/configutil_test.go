package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string `json:"base_url"`
	PageSize int    `json:"page_size"`
}

func TestSplitExt(t *testing.T) {
	prefix, ext := splitExt("cookclip.json5")
	require.Equal(t, "cookclip", prefix)
	require.Equal(t, "json5", ext)

	prefix, ext = splitExt("noext")
	require.Equal(t, "noext", prefix)
	require.Equal(t, "", ext)

	require.Equal(t, filepath.Join("a", "cfg.local.json5"), localName(filepath.Join("a", "cfg.json5")))
}

func TestReadConfigWithLocalOverride(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "cookclip.json5")

	err := os.WriteFile(base, []byte(`{
		// comments are allowed
		base_url: "https://example.com",
		page_size: 30,
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "cookclip.local.json5"), []byte(`{page_size: 10}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, "https://example.com", cfg.BaseUrl)
	require.Equal(t, 10, cfg.PageSize)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "missing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadWithDefaults(t *testing.T) {
	defaults := testConfig{BaseUrl: "https://default", PageSize: 30}

	dir := t.TempDir()
	explicit := filepath.Join(dir, "cfg.json5")
	err := os.WriteFile(explicit, []byte(`{page_size: 5}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadWithDefaults(explicit, "", defaults)
	require.NoError(t, err)
	require.Equal(t, "https://default", cfg.BaseUrl)
	require.Equal(t, 5, cfg.PageSize)

	_, err = ReadWithDefaults(filepath.Join(dir, "nope.json5"), "", defaults)
	require.Error(t, err)

	cfg, err = ReadWithDefaults("", "definitely-not-a-config-cookclip.json5", defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)
}
