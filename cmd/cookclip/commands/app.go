package commands

import (
	"context"
	devenv "cookclip/dev/env"
	"cookclip/lib/catalogcache"
	"cookclip/lib/identity"
	"cookclip/lib/platforms/clipstore"
	"cookclip/lib/platforms/foodsafety"
	"cookclip/lib/restyutil"
	"cookclip/lib/util/serviceutil"
	"cookclip/services/cookclip"
	"log/slog"
)

type app struct {
	config  Config
	service cookclip.Service
	cache   *catalogcache.Cache
	// opened by the first Uid call, serve never needs it
	identity identity.Store
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// fatal releases the databases before exiting, os.Exit skips deferred
// closes and an unclosed badger dir stays locked.
func (a *app) fatal(message string, err error) {
	a.close()
	serviceutil.Fatal(message, err)
}

// Uid returns this installation's uid, creating it on first use.
func (a *app) Uid(ctx context.Context) string {
	if a.identity == nil {
		db, err := a.config.Identity.Database.OpenDB(identity.Schema)
		if err != nil {
			a.fatal("failed to open identity db", err)
		}
		a.closers = append(a.closers, func() { db.Close() })
		a.identity = identity.NewSqliteStore(db)
	}
	uid, err := a.identity.GetOrCreate(ctx)
	if err != nil {
		a.fatal("failed to resolve identity", err)
	}
	return uid
}

func dumpRequests(platform string, set func(restyutil.InstrumentOutput)) {
	dir, err := devenv.ResolvePath("<dev_state>/resty/" + platform)
	if err != nil {
		slog.Warn("failed to resolve resty output dir", "platform", platform, "err", err)
		return
	}
	out, err := restyutil.NewFilesystemOutput(dir)
	if err != nil {
		slog.Warn("failed to create resty output", "platform", platform, "err", err)
		return
	}
	set(out)
}

// newApp wires the clients together from config. persistentCache selects the
// on-disk badger catalog cache instead of an in-memory one.
func newApp(persistentCache bool) *app {
	config, err := loadConfig()
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	if verbose {
		dumpRequests("foodsafety", foodsafety.SetRestyInstrumentOutput)
		dumpRequests("clipstore", clipstore.SetRestyInstrumentOutput)
	}

	catalog, err := foodsafety.NewClient(foodsafety.ClientOptions{
		BaseUrl:           config.Catalog.BaseUrl,
		ApiKey:            config.Catalog.ApiKey,
		RequestsPerSecond: config.Catalog.RequestsPerSecond,
	})
	if err != nil {
		serviceutil.Fatal("failed to create catalog client, set catalog.api_key in "+configName, err)
	}
	clips := clipstore.NewClient(clipstore.ClientOptions{
		BaseUrl: config.ClipStore.BaseUrl,
	})

	a := &app{config: config}

	var backend catalogcache.Backend = catalogcache.NewMemoryBackend(config.Cache.TTL())
	if persistentCache {
		dir, err := devenv.ResolvePath(config.Cache.Dir)
		if err != nil {
			a.fatal("failed to resolve cache dir", err)
		}
		db, err := catalogcache.OpenBadger(dir)
		if err != nil {
			// another process may hold the lock
			slog.Warn("failed to open catalog cache, falling back to memory", "dir", dir, "err", err)
		} else {
			backend = catalogcache.NewBadgerBackend(db, config.Cache.TTL())
			a.closers = append(a.closers, func() { db.Close() })
		}
	}
	a.cache = catalogcache.New(catalog, backend)
	a.service = cookclip.NewService(catalog, a.cache, clips, config.Catalog.PageSize)
	return a
}
