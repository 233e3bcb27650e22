package foodsafety_test

import (
	"context"
	devenv "cookclip/dev/env"
	"cookclip/lib/platforms/foodsafety"
	"cookclip/lib/restyutil"
	"cookclip/lib/telemetry"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLiveCatalog(t *testing.T) {
	config, err := devenv.GetStateConfig[devenv.CatalogTestConfig]("catalog_config.json5")
	if err != nil {
		t.Skip("live catalog credentials are not configured, run `go run ./dev` to provide them:", err)
	}
	defer telemetry.SetupForTesting(t, "test:foodsafety")()

	dir, err := devenv.ResolvePath("<dev_state>/resty/foodsafety_test")
	require.NoError(t, err)
	out, err := restyutil.NewFilesystemOutput(dir)
	require.NoError(t, err)
	foodsafety.SetRestyInstrumentOutput(out)
	t.Cleanup(func() { foodsafety.SetRestyInstrumentOutput(nil) })

	client, err := foodsafety.NewClient(foodsafety.ClientOptions{
		BaseUrl: config.BaseUrl,
		ApiKey:  config.ApiKey,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	page, err := client.FetchPage(ctx, 1, 5, foodsafety.Query{})
	require.NoError(t, err)
	require.Len(t, page, 5)
	for _, recipe := range page {
		require.NotEmpty(t, recipe.ID)
		require.NotEmpty(t, recipe.Title)
	}

	filtered, err := client.FetchPage(ctx, 1, 5, foodsafety.Query{Term: "김치", Field: foodsafety.FieldName})
	require.NoError(t, err)
	for _, recipe := range filtered {
		require.Contains(t, recipe.Title, "김치")
	}
}
