// Package catalogcache shares full-catalog fetches between callers for a
// configurable time.
package catalogcache

import (
	"context"
	"cookclip/lib/platforms/foodsafety"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/purell"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("cookclip/catalogcache")
var meter = otel.Meter("cookclip/catalogcache")

var hitCounter, _ = meter.Int64Counter("catalog_cache_hits")
var missCounter, _ = meter.Int64Counter("catalog_cache_misses")

const DefaultTTL = time.Hour

var ErrNotFound = errors.New("recipe not found in catalog")

// Source is where the full catalog comes from on a miss.
type Source interface {
	FetchFullCatalog(ctx context.Context) ([]foodsafety.Recipe, error)
	FullCatalogURL() string
}

// Backend stores catalogs by key. Expired entries must read as misses.
type Backend interface {
	Get(ctx context.Context, key string) ([]foodsafety.Recipe, bool, error)
	Set(ctx context.Context, key string, rows []foodsafety.Recipe) error
	Delete(ctx context.Context, key string) error
}

type Stats struct {
	Hits   int64
	Misses int64
}

type Cache struct {
	source  Source
	backend Backend
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

func New(source Source, backend Backend) *Cache {
	return &Cache{source: source, backend: backend}
}

// Key normalizes a request url so equivalent spellings share an entry.
func Key(rawUrl string) string {
	normalized, err := purell.NormalizeURLString(
		rawUrl,
		purell.FlagsSafe|
			purell.FlagsUsuallySafeNonGreedy|
			purell.FlagRemoveDirectoryIndex|
			purell.FlagRemoveFragment|
			purell.FlagSortQuery,
	)
	if err != nil {
		return rawUrl
	}
	return normalized
}

func (c *Cache) key() string {
	return Key(c.source.FullCatalogURL())
}

// Full returns the cached catalog, fetching it when missing or expired.
func (c *Cache) Full(ctx context.Context) ([]foodsafety.Recipe, error) {
	ctx, span := tracer.Start(ctx, "Full")
	defer span.End()

	key := c.key()
	span.SetAttributes(attribute.String("cache_key", key))

	rows, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "catalog cache read failed, treating as miss", "err", err)
		span.RecordError(err)
	}
	if ok {
		c.hits.Add(1)
		hitCounter.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("hit", true))
		return rows, nil
	}
	c.misses.Add(1)
	missCounter.Add(ctx, 1)

	// other callers may be waiting on this fill, it outlives ctx
	fillCtx := context.WithoutCancel(ctx)
	fill := c.group.DoChan(key, func() (any, error) {
		rows, err := c.source.FetchFullCatalog(fillCtx)
		if err != nil {
			return nil, err
		}
		err = c.backend.Set(fillCtx, key, rows)
		if err != nil {
			slog.WarnContext(fillCtx, "failed to store catalog in cache", "err", err)
		}
		return rows, nil
	})

	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		span.SetStatus(codes.Error, "gave up waiting for catalog")
		return nil, ctx.Err()
	case res := <-fill:
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, "failed to fetch catalog")
			return nil, res.Err
		}
		span.SetAttributes(attribute.Bool("shared", res.Shared))
		return res.Val.([]foodsafety.Recipe), nil
	}
}

// Lookup finds a recipe by id in the full catalog.
func (c *Cache) Lookup(ctx context.Context, id string) (foodsafety.Recipe, error) {
	rows, err := c.Full(ctx)
	if err != nil {
		return foodsafety.Recipe{}, err
	}
	for _, r := range rows {
		if r.ID == id {
			return r, nil
		}
	}
	return foodsafety.Recipe{}, ErrNotFound
}

func (c *Cache) Invalidate(ctx context.Context) error {
	return c.backend.Delete(ctx, c.key())
}

func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}
