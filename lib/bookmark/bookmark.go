// Package bookmark joins catalog rows with a visitor's clips and performs
// the bookmark mutations on the clip store.
package bookmark

import (
	"context"
	"cookclip/lib/platforms/clipstore"
	"cookclip/lib/platforms/foodsafety"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cookclip/bookmark")

// ClipStore is the subset of the clip store client these functions use.
type ClipStore interface {
	List(ctx context.Context) ([]clipstore.Clip, error)
	Create(ctx context.Context, uid, recipeID, comment string) (clipstore.Clip, error)
	Update(ctx context.Context, clipID, comment string) (clipstore.Clip, error)
	Delete(ctx context.Context, clipID string) error
}

// View is a recipe row annotated with the visitor's bookmark state.
type View struct {
	foodsafety.Recipe
	IsBookmarked bool   `json:"is_bookmarked"`
	ClipID       string `json:"clip_id,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// Owned keeps the clips belonging to uid, in order.
func Owned(clips []clipstore.Clip, uid string) []clipstore.Clip {
	var out []clipstore.Clip
	for _, c := range clips {
		if c.UID == uid {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first clip of uid for recipeID.
func Find(clips []clipstore.Clip, uid, recipeID string) (clipstore.Clip, bool) {
	for _, c := range clips {
		if c.UID == uid && c.RecipeID == recipeID {
			return c, true
		}
	}
	return clipstore.Clip{}, false
}

// Reconcile annotates rows with uid's clips. When several clips match a row
// the first one in clip order wins.
func Reconcile(rows []foodsafety.Recipe, clips []clipstore.Clip, uid string) []View {
	byRecipe := map[string]clipstore.Clip{}
	for _, c := range clips {
		if c.UID != uid {
			continue
		}
		if _, seen := byRecipe[c.RecipeID]; seen {
			continue
		}
		byRecipe[c.RecipeID] = c
	}

	views := make([]View, len(rows))
	for i, row := range rows {
		views[i] = View{Recipe: row}
		clip, ok := byRecipe[row.ID]
		if !ok {
			continue
		}
		views[i].IsBookmarked = true
		views[i].ClipID = clip.ID
		views[i].Comment = clip.Comment
	}
	return views
}

type Outcome int

const (
	// OutcomeRemoved means the bookmark was deleted.
	OutcomeRemoved Outcome = iota
	// OutcomeOpenForCreate means nothing was written, the caller should
	// collect a comment and call Add.
	OutcomeOpenForCreate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRemoved:
		return "removed"
	case OutcomeOpenForCreate:
		return "open_for_create"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Toggle removes the bookmark of a bookmarked view, otherwise it asks the
// caller to create one.
func Toggle(ctx context.Context, store ClipStore, view View, uid string) (Outcome, error) {
	if !view.IsBookmarked {
		return OutcomeOpenForCreate, nil
	}

	ctx, span := tracer.Start(ctx, "Toggle")
	defer span.End()

	if view.ClipID != "" {
		err := store.Delete(ctx, view.ClipID)
		if err != nil && !errors.Is(err, clipstore.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete clip")
			return OutcomeRemoved, err
		}
	}
	// sweep duplicates the view did not know about
	_, err := Remove(ctx, store, uid, view.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to remove remaining clips")
		return OutcomeRemoved, err
	}
	return OutcomeRemoved, nil
}

// Add bookmarks recipeID for uid. An existing clip for the pair gets its
// comment updated instead of a second clip being created.
func Add(ctx context.Context, store ClipStore, uid, recipeID, comment string) (clipstore.Clip, error) {
	ctx, span := tracer.Start(ctx, "Add")
	defer span.End()

	span.SetAttributes(attribute.String("recipe_id", recipeID))

	clips, err := store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list clips")
		return clipstore.Clip{}, err
	}

	existing, ok := Find(clips, uid, recipeID)
	if ok {
		span.SetAttributes(attribute.Bool("existing", true))
		if existing.Comment == comment {
			return existing, nil
		}
		updated, err := store.Update(ctx, existing.ID, comment)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to update clip")
			return clipstore.Clip{}, err
		}
		return updated, nil
	}

	created, err := store.Create(ctx, uid, recipeID, comment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create clip")
		return clipstore.Clip{}, err
	}
	return created, nil
}

// Remove deletes every clip uid holds for recipeID and returns how many
// were deleted.
func Remove(ctx context.Context, store ClipStore, uid, recipeID string) (int, error) {
	ctx, span := tracer.Start(ctx, "Remove")
	defer span.End()

	clips, err := store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list clips")
		return 0, err
	}

	removed := 0
	for _, c := range Owned(clips, uid) {
		if c.RecipeID != recipeID {
			continue
		}
		err := store.Delete(ctx, c.ID)
		if errors.Is(err, clipstore.ErrNotFound) {
			continue
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete clip")
			return removed, err
		}
		removed++
	}
	span.SetAttributes(attribute.Int("removed", removed))
	return removed, nil
}

// newer reports whether clip a was created after clip b. Numeric ids are
// compared as numbers, anything else falls back to text order.
func newer(a, b clipstore.Clip) bool {
	an, aok := clipstore.NumericID(a.ID)
	bn, bok := clipstore.NumericID(b.ID)
	if aok && bok {
		return an > bn
	}
	return a.ID > b.ID
}

// Dedupe keeps only the newest clip per recipe for uid and returns the
// clips it deleted.
func Dedupe(ctx context.Context, store ClipStore, uid string) ([]clipstore.Clip, error) {
	ctx, span := tracer.Start(ctx, "Dedupe")
	defer span.End()

	clips, err := store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list clips")
		return nil, err
	}

	groups := map[string][]clipstore.Clip{}
	var order []string
	for _, c := range Owned(clips, uid) {
		if _, ok := groups[c.RecipeID]; !ok {
			order = append(order, c.RecipeID)
		}
		groups[c.RecipeID] = append(groups[c.RecipeID], c)
	}

	var deleted []clipstore.Clip
	for _, recipeID := range order {
		group := groups[recipeID]
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return newer(group[i], group[j])
		})
		for _, c := range group[1:] {
			err := store.Delete(ctx, c.ID)
			if errors.Is(err, clipstore.ErrNotFound) {
				continue
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to delete duplicate")
				return deleted, err
			}
			deleted = append(deleted, c)
		}
		slog.DebugContext(ctx, "deduplicated clips", "recipe_id", recipeID, "kept", group[0].ID, "removed", len(group)-1)
	}
	span.SetAttributes(attribute.Int("deleted", len(deleted)))
	return deleted, nil
}
