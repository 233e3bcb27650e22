package devenv

// CatalogTestConfig is read from <dev_state>/catalog_config.json5 by the
// tests that talk to the live recipe catalog.
type CatalogTestConfig struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
}
