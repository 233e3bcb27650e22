package commands

import (
	"cookclip/lib/catalogcache"
	"cookclip/lib/platforms/clipstore"
	"cookclip/lib/platforms/foodsafety"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), configName)
	err := os.WriteFile(path, []byte(`{
		catalog: { api_key: "abc", page_size: 10 },
		server: { allowed_origins: ["https://cookclip.example"] },
	}`), 0600)
	require.NoError(t, err)

	configPath = path
	t.Cleanup(func() { configPath = "" })

	config, err := loadConfig()
	require.NoError(t, err)
	require.Equal(t, "abc", config.Catalog.ApiKey)
	require.Equal(t, 10, config.Catalog.PageSize)
	require.Equal(t, foodsafety.DefaultBaseUrl, config.Catalog.BaseUrl)
	require.Equal(t, clipstore.DefaultBaseUrl, config.ClipStore.BaseUrl)
	require.Equal(t, "<dev_state>/identity.db", config.Identity.Database.File)
	require.Equal(t, 8080, config.Server.Port)
	require.Equal(t, []string{"https://cookclip.example"}, config.Server.AllowedOrigins)
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "missing.json5")
	t.Cleanup(func() { configPath = "" })

	_, err := loadConfig()
	require.Error(t, err)
}

func TestCacheTTL(t *testing.T) {
	require.Equal(t, catalogcache.DefaultTTL, CacheConfig{}.TTL())
	require.Equal(t, 5*time.Minute, CacheConfig{TtlMinutes: 5}.TTL())
}
