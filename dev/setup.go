package main

import (
	devenv "cookclip/dev/env"
	configlibsql "cookclip/lib/configutil/libsql"
	"cookclip/lib/identity"
	"cookclip/lib/platforms/foodsafety"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/tcnksm/go-input"
)

const catalogConfigPath = "<dev_state>/catalog_config.json5"

func CreateIdentityDB() error {
	config := configlibsql.Struct{File: "<dev_state>/identity.db"}
	db, err := config.OpenDB(identity.Schema)
	if err != nil {
		return err
	}
	defer db.Close()
	fmt.Println("identity database ready at", config.File)
	return nil
}

// SetupCatalogTests asks for the catalog credentials the live tests and the
// local cookclip.json5 use.
func SetupCatalogTests() error {
	path, err := devenv.ResolvePath(catalogConfigPath)
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if !os.IsNotExist(err) {
		slog.Info("catalog credentials have already been provided")
		return err
	}
	ui := input.DefaultUI()

	baseUrl, err := ui.Ask("catalog base url:", &input.Options{
		Default: foodsafety.DefaultBaseUrl,
		Loop:    true,
	})
	if err != nil {
		return err
	}
	apiKey, err := ui.Ask("catalog api key:", &input.Options{
		Required: true,
		Loop:     true,
	})
	if err != nil {
		return err
	}

	cached, err := json.Marshal(devenv.CatalogTestConfig{
		BaseUrl: baseUrl,
		ApiKey:  apiKey,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, cached, 0600)
}

// WriteLocalConfig creates cookclip.local.json5 in the repository root from
// the catalog credentials so the cli runs against them without flags.
func WriteLocalConfig() error {
	const localConfig = "cookclip.local.json5"
	_, err := os.Stat(localConfig)
	if err == nil {
		slog.Info("local config already exists", "path", localConfig)
		return nil
	}

	catalog, err := devenv.GetStateConfig[devenv.CatalogTestConfig]("catalog_config.json5")
	if err != nil {
		return err
	}
	contents, err := json.MarshalIndent(map[string]any{
		"catalog": map[string]string{
			"base_url": catalog.BaseUrl,
			"api_key":  catalog.ApiKey,
		},
	}, "", "  ")
	if err != nil {
		return err
	}
	err = os.WriteFile(localConfig, contents, 0600)
	if err != nil {
		return err
	}
	fmt.Println("wrote", localConfig)
	return nil
}
