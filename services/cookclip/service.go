package cookclip

import (
	"context"
	"cookclip/lib/bookmark"
	"cookclip/lib/browse"
	"cookclip/lib/catalogcache"
	"cookclip/lib/platforms/clipstore"
	"cookclip/lib/platforms/foodsafety"
	"cookclip/lib/textutil"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrNotBookmarked = errors.New("recipe is not bookmarked")
	ErrMissingUid    = errors.New("uid is required")
	ErrInvalidInput  = errors.New("invalid input")
)

const (
	suggestionLimit     = 5
	suggestionThreshold = 0.75
)

type Service struct {
	catalog  browse.Fetcher
	cache    *catalogcache.Cache
	clips    bookmark.ClipStore
	pageSize int
}

func NewService(catalog browse.Fetcher, cache *catalogcache.Cache, clips bookmark.ClipStore, pageSize int) Service {
	if pageSize <= 0 {
		pageSize = foodsafety.DefaultPageSize
	}
	pageSize = min(pageSize, foodsafety.MaxBatch)
	return Service{
		catalog:  catalog,
		cache:    cache,
		clips:    clips,
		pageSize: pageSize,
	}
}

func (s Service) PageSize() int {
	return s.pageSize
}

type PageResult struct {
	Items []bookmark.View `json:"items"`
	// NextOffset is 0 when there are no more pages.
	NextOffset int `json:"next_offset"`
}

// Page fetches one catalog page at offset and reconciles it with uid's
// clips. An empty uid yields un-bookmarked views.
func (s Service) Page(ctx context.Context, uid string, offset int, query foodsafety.Query) (PageResult, error) {
	ctx, span := tracer.Start(ctx, "Page")
	defer span.End()

	if offset < 1 {
		offset = 1
	}
	span.SetAttributes(
		attribute.Int("offset", offset),
		attribute.String("term", query.Term),
	)

	rows, err := s.catalog.FetchPage(ctx, offset, s.pageSize, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		return PageResult{}, err
	}

	next := 0
	if len(rows) >= s.pageSize {
		next = offset + len(rows)
	}
	return PageResult{
		Items:      s.ReconcileItems(ctx, uid, rows),
		NextOffset: next,
	}, nil
}

// Browse returns a controller for query. Nothing is fetched yet.
func (s Service) Browse(query foodsafety.Query) *browse.Controller {
	return browse.NewController(s.catalog, s.pageSize, query)
}

// ReconcileItems annotates rows with uid's bookmarks. A clip store failure
// is logged and yields un-bookmarked views so browsing keeps working.
func (s Service) ReconcileItems(ctx context.Context, uid string, rows []foodsafety.Recipe) []bookmark.View {
	if uid == "" {
		return bookmark.Reconcile(rows, nil, uid)
	}
	clips, err := s.clips.List(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to list clips, showing recipes without bookmarks", "err", err)
		return bookmark.Reconcile(rows, nil, uid)
	}
	return bookmark.Reconcile(rows, clips, uid)
}

// Recipe returns a single recipe from the cached catalog.
func (s Service) Recipe(ctx context.Context, uid, id string) (bookmark.View, error) {
	ctx, span := tracer.Start(ctx, "Recipe")
	defer span.End()

	span.SetAttributes(attribute.String("recipe_id", id))

	recipe, err := s.cache.Lookup(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to find recipe")
		return bookmark.View{}, err
	}
	return s.ReconcileItems(ctx, uid, []foodsafety.Recipe{recipe})[0], nil
}

// Bookmarks lists uid's bookmarked recipes in catalog order. Clips that
// point outside the cached catalog are skipped.
func (s Service) Bookmarks(ctx context.Context, uid string) ([]bookmark.View, error) {
	ctx, span := tracer.Start(ctx, "Bookmarks")
	defer span.End()

	if uid == "" {
		return nil, ErrMissingUid
	}

	clips, err := s.clips.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list clips")
		return nil, err
	}
	owned := bookmark.Owned(clips, uid)
	if len(owned) == 0 {
		return []bookmark.View{}, nil
	}

	catalog, err := s.cache.Full(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch catalog")
		return nil, err
	}

	out := []bookmark.View{}
	for _, view := range bookmark.Reconcile(catalog, owned, uid) {
		if view.IsBookmarked {
			out = append(out, view)
		}
	}
	span.SetAttributes(
		attribute.Int("clips", len(owned)),
		attribute.Int("views", len(out)),
	)
	return out, nil
}

func validate(uid, recipeID string) error {
	if uid == "" {
		return ErrMissingUid
	}
	if strings.TrimSpace(recipeID) == "" {
		return fmt.Errorf("%w: recipe id is required", ErrInvalidInput)
	}
	return nil
}

// Bookmark creates or updates uid's clip for recipeID.
func (s Service) Bookmark(ctx context.Context, uid, recipeID, comment string) (clipstore.Clip, error) {
	if err := validate(uid, recipeID); err != nil {
		return clipstore.Clip{}, err
	}
	return bookmark.Add(ctx, s.clips, uid, recipeID, comment)
}

// EditComment changes the comment of an existing bookmark.
func (s Service) EditComment(ctx context.Context, uid, recipeID, comment string) (clipstore.Clip, error) {
	ctx, span := tracer.Start(ctx, "EditComment")
	defer span.End()

	if err := validate(uid, recipeID); err != nil {
		return clipstore.Clip{}, err
	}

	clips, err := s.clips.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list clips")
		return clipstore.Clip{}, err
	}
	existing, ok := bookmark.Find(clips, uid, recipeID)
	if !ok {
		return clipstore.Clip{}, ErrNotBookmarked
	}
	updated, err := s.clips.Update(ctx, existing.ID, comment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update clip")
		return clipstore.Clip{}, err
	}
	return updated, nil
}

// Unbookmark removes every clip uid holds for recipeID.
func (s Service) Unbookmark(ctx context.Context, uid, recipeID string) (int, error) {
	if err := validate(uid, recipeID); err != nil {
		return 0, err
	}
	return bookmark.Remove(ctx, s.clips, uid, recipeID)
}

// Toggle removes the bookmark when one exists. Otherwise it reports
// OutcomeOpenForCreate and the caller follows up with Bookmark.
func (s Service) Toggle(ctx context.Context, uid, recipeID string) (bookmark.Outcome, error) {
	if err := validate(uid, recipeID); err != nil {
		return bookmark.OutcomeOpenForCreate, err
	}

	clips, err := s.clips.List(ctx)
	if err != nil {
		return bookmark.OutcomeOpenForCreate, err
	}
	view := bookmark.Reconcile([]foodsafety.Recipe{{ID: recipeID}}, clips, uid)[0]
	return bookmark.Toggle(ctx, s.clips, view, uid)
}

func (s Service) Dedupe(ctx context.Context, uid string) ([]clipstore.Clip, error) {
	if uid == "" {
		return nil, ErrMissingUid
	}
	return bookmark.Dedupe(ctx, s.clips, uid)
}

// Suggest offers catalog titles close to term, for "did you mean" hints
// when a search comes back empty.
func (s Service) Suggest(ctx context.Context, term string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Suggest")
	defer span.End()

	catalog, err := s.cache.Full(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch catalog")
		return nil, err
	}
	titles := make([]string, len(catalog))
	for i, r := range catalog {
		titles[i] = r.Title
	}

	names := []string{}
	for _, suggestion := range textutil.Suggest(term, titles, suggestionLimit, suggestionThreshold) {
		names = append(names, suggestion.Name)
	}
	return names, nil
}
