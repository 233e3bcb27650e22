package cookclip

import (
	"cookclip/lib/bookmark"
	"cookclip/lib/catalogcache"
	"cookclip/lib/platforms/clipstore"
	"cookclip/lib/platforms/foodsafety"
	"cookclip/lib/upstream"
	"cookclip/lib/util/serviceutil"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const UidHeader = "X-Cookclip-Uid"

type HandlerOptions struct {
	// AllowedOrigins defaults to every origin.
	AllowedOrigins []string
	// AccessToken, when set, is required as a bearer token on every request.
	AccessToken string
}

type handler struct {
	svc Service
}

// NewHandler exposes svc as a JSON api.
func NewHandler(svc Service, opts HandlerOptions) http.Handler {
	h := handler{svc: svc}

	r := mux.NewRouter()
	r.HandleFunc("/recipes", h.listRecipes).Methods(http.MethodGet)
	r.HandleFunc("/recipes/{id}", h.getRecipe).Methods(http.MethodGet)
	r.HandleFunc("/suggestions", h.suggest).Methods(http.MethodGet)

	r.HandleFunc("/bookmarks", h.listBookmarks).Methods(http.MethodGet)
	r.HandleFunc("/bookmarks", h.createBookmark).Methods(http.MethodPost)
	r.HandleFunc("/bookmarks/dedupe", h.dedupe).Methods(http.MethodPost)
	r.HandleFunc("/bookmarks/{recipe_id}", h.editBookmark).Methods(http.MethodPut)
	r.HandleFunc("/bookmarks/{recipe_id}", h.deleteBookmark).Methods(http.MethodDelete)
	r.HandleFunc("/bookmarks/{recipe_id}/toggle", h.toggleBookmark).Methods(http.MethodPost)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", UidHeader},
	})
	return c.Handler(serviceutil.VerifyAccessToken(opts.AccessToken, r))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ErrMissingUid), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotBookmarked),
		errors.Is(err, catalogcache.ErrNotFound),
		errors.Is(err, clipstore.ErrNotFound):
		return http.StatusNotFound
	case upstream.IsLogical(err), upstream.IsTransport(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	message := err.Error()
	switch status {
	case http.StatusBadGateway:
		message = upstream.Message(err)
	case http.StatusInternalServerError:
		message = "internal error"
	}
	if status >= 500 {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: message})
}

func requireUid(r *http.Request) (string, error) {
	uid := r.Header.Get(UidHeader)
	if uid == "" {
		return "", fmt.Errorf("%w: missing %s header", ErrMissingUid, UidHeader)
	}
	return uid, nil
}

func decodeBody(r *http.Request, out any) error {
	err := json.NewDecoder(r.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	return nil
}

func (h handler) listRecipes(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	field, err := foodsafety.ParseField(params.Get("filter"))
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error()))
		return
	}
	offset := 1
	if raw := params.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 1 {
			writeError(w, r, fmt.Errorf("%w: offset must be a positive integer", ErrInvalidInput))
			return
		}
	}

	page, err := h.svc.Page(
		r.Context(),
		r.Header.Get(UidHeader),
		offset,
		foodsafety.Query{Term: params.Get("q"), Field: field},
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type recipeDetail struct {
	bookmark.View
	Steps           []foodsafety.Step       `json:"steps"`
	IngredientItems []foodsafety.Ingredient `json:"ingredient_items"`
}

func (h handler) getRecipe(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Recipe(r.Context(), r.Header.Get(UidHeader), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeDetail{
		View:            view,
		Steps:           view.Steps(),
		IngredientItems: view.ParseIngredients(),
	})
}

func (h handler) suggest(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"names": names})
}

func (h handler) listBookmarks(w http.ResponseWriter, r *http.Request) {
	uid, err := requireUid(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := h.svc.Bookmarks(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views})
}

type createBookmarkRequest struct {
	RecipeID string `json:"recipe_id"`
	Comment  string `json:"comment"`
}

func (h handler) createBookmark(w http.ResponseWriter, r *http.Request) {
	uid, err := requireUid(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req createBookmarkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	clip, err := h.svc.Bookmark(r.Context(), uid, req.RecipeID, req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, clip)
}

type editBookmarkRequest struct {
	Comment string `json:"comment"`
}

func (h handler) editBookmark(w http.ResponseWriter, r *http.Request) {
	uid, err := requireUid(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req editBookmarkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	clip, err := h.svc.EditComment(r.Context(), uid, mux.Vars(r)["recipe_id"], req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clip)
}

func (h handler) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	uid, err := requireUid(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	removed, err := h.svc.Unbookmark(r.Context(), uid, mux.Vars(r)["recipe_id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h handler) toggleBookmark(w http.ResponseWriter, r *http.Request) {
	uid, err := requireUid(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	outcome, err := h.svc.Toggle(r.Context(), uid, mux.Vars(r)["recipe_id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"outcome": outcome.String()})
}

func (h handler) dedupe(w http.ResponseWriter, r *http.Request) {
	uid, err := requireUid(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	deleted, err := h.svc.Dedupe(r.Context(), uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if deleted == nil {
		deleted = []clipstore.Clip{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}
