// Package browse accumulates catalog pages for an infinite-scroll style
// listing.
package browse

import (
	"context"
	"cookclip/lib/platforms/foodsafety"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cookclip/browse")

type Fetcher interface {
	FetchPage(ctx context.Context, start, size int, query foodsafety.Query) ([]foodsafety.Recipe, error)
}

type FetchFunc func(ctx context.Context, start, size int, query foodsafety.Query) ([]foodsafety.Recipe, error)

func (f FetchFunc) FetchPage(ctx context.Context, start, size int, query foodsafety.Query) ([]foodsafety.Recipe, error) {
	return f(ctx, start, size, query)
}

// Controller holds the pages loaded so far for one query. It is safe for
// concurrent use, the lock is never held while fetching.
type Controller struct {
	fetcher Fetcher
	size    int

	lock  sync.Mutex
	pages [][]foodsafety.Recipe
	// 1-based offset of the next page, 0 once the list is exhausted
	next       int
	query      foodsafety.Query
	generation uint64
}

// NewController returns a controller positioned before the first page of
// query. Nothing is fetched until LoadNext.
func NewController(fetcher Fetcher, size int, query foodsafety.Query) *Controller {
	if size <= 0 {
		size = foodsafety.DefaultPageSize
	}
	// the catalog never returns more than MaxBatch rows, a larger size would
	// make every full page look like the last one
	size = min(size, foodsafety.MaxBatch)
	return &Controller{
		fetcher: fetcher,
		size:    size,
		next:    1,
		query:   query,
	}
}

// LoadNext fetches and appends the next page. It reports false without
// error when the list is already exhausted or when the response arrived
// after the query changed or another load advanced the list.
func (c *Controller) LoadNext(ctx context.Context) (bool, error) {
	c.lock.Lock()
	if c.next == 0 {
		c.lock.Unlock()
		return false, nil
	}
	generation := c.generation
	offset := c.next
	query := c.query
	c.lock.Unlock()

	ctx, span := tracer.Start(ctx, "LoadNext")
	defer span.End()
	span.SetAttributes(
		attribute.Int("offset", offset),
		attribute.String("term", query.Term),
	)

	page, err := c.fetcher.FetchPage(ctx, offset, c.size, query)

	c.lock.Lock()
	defer c.lock.Unlock()

	if generation != c.generation || offset != c.next {
		slog.DebugContext(ctx, "discarding stale page", "offset", offset, "term", query.Term)
		span.SetAttributes(attribute.Bool("stale", true))
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		return false, err
	}

	c.pages = append(c.pages, page)
	if len(page) < c.size {
		c.next = 0
	} else {
		c.next += len(page)
	}
	span.SetAttributes(attribute.Int("rows", len(page)))
	return true, nil
}

// SetQuery clears the accumulated pages, switches to query and loads its
// first page.
func (c *Controller) SetQuery(ctx context.Context, query foodsafety.Query) error {
	c.lock.Lock()
	c.pages = nil
	c.next = 1
	c.query = query
	c.generation++
	c.lock.Unlock()

	_, err := c.LoadNext(ctx)
	return err
}

// Items is every loaded row in fetch order.
func (c *Controller) Items() []foodsafety.Recipe {
	c.lock.Lock()
	defer c.lock.Unlock()

	var out []foodsafety.Recipe
	for _, page := range c.pages {
		out = append(out, page...)
	}
	return out
}

func (c *Controller) Pages() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pages)
}

func (c *Controller) HasNext() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.next != 0
}

// NextOffset is the offset the next LoadNext will request, 0 when
// exhausted.
func (c *Controller) NextOffset() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.next
}

func (c *Controller) Query() foodsafety.Query {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.query
}
