package commands

import (
	"cookclip/lib/catalogcache"
	"cookclip/lib/configutil"
	configlibsql "cookclip/lib/configutil/libsql"
	"cookclip/lib/platforms/clipstore"
	"cookclip/lib/platforms/foodsafety"
	"time"
)

const configName = "cookclip.json5"

type CatalogConfig struct {
	BaseUrl           string  `json:"base_url"`
	ApiKey            string  `json:"api_key"`
	PageSize          int     `json:"page_size"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type ClipStoreConfig struct {
	BaseUrl string `json:"base_url"`
}

type IdentityConfig struct {
	Database configlibsql.Struct `json:"database"`
}

type CacheConfig struct {
	Dir        string `json:"dir"`
	TtlMinutes int    `json:"ttl_minutes"`
}

func (c CacheConfig) TTL() time.Duration {
	if c.TtlMinutes <= 0 {
		return catalogcache.DefaultTTL
	}
	return time.Duration(c.TtlMinutes) * time.Minute
}

type ServerConfig struct {
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
	AccessToken    string   `json:"access_token"`
}

type Config struct {
	Catalog   CatalogConfig   `json:"catalog"`
	ClipStore ClipStoreConfig `json:"clip_store"`
	Identity  IdentityConfig  `json:"identity"`
	Cache     CacheConfig     `json:"cache"`
	Server    ServerConfig    `json:"server"`
}

func defaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{
			BaseUrl:           foodsafety.DefaultBaseUrl,
			PageSize:          foodsafety.DefaultPageSize,
			RequestsPerSecond: 2,
		},
		ClipStore: ClipStoreConfig{
			BaseUrl: clipstore.DefaultBaseUrl,
		},
		Identity: IdentityConfig{
			Database: configlibsql.Struct{File: "<dev_state>/identity.db"},
		},
		Cache: CacheConfig{
			Dir:        "<dev_state>/catalog-cache",
			TtlMinutes: 60,
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

func loadConfig() (Config, error) {
	return configutil.ReadWithDefaults(configPath, configName, defaultConfig())
}
