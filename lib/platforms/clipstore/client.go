// Package clipstore is a client for the remote bookmark ("clip") collection,
// a plain REST resource at /cookclip.
package clipstore

import (
	"bytes"
	"context"
	"cookclip/lib/restyutil"
	"cookclip/lib/upstream"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ServiceName    = "clipstore"
	DefaultBaseUrl = "https://68dfbc80898434f41358c319.mockapi.io"
	collection     = "/cookclip"
)

var ErrNotFound = errors.New("clip not found")

// Clip is one bookmark record. ID is assigned by the store.
type Clip struct {
	ID       string `json:"id"`
	UID      string `json:"uid"`
	RecipeID string `json:"cookid"`
	Comment  string `json:"comment"`
}

// flexString accepts both JSON strings and numbers, different deployments
// of the store disagree on the type of id fields.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

type wireClip struct {
	ID       flexString `json:"id"`
	UID      flexString `json:"uid"`
	RecipeID flexString `json:"cookid"`
	Comment  flexString `json:"comment"`
}

func (w wireClip) clip() Clip {
	return Clip{
		ID:       string(w.ID),
		UID:      string(w.UID),
		RecipeID: string(w.RecipeID),
		Comment:  string(w.Comment),
	}
}

type ClientOptions struct {
	BaseUrl string
	// Timeout defaults to 30 seconds.
	Timeout time.Duration
}

type Client struct {
	http *resty.Client
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(opts.BaseUrl, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetHeader("accept", "application/json")
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{http: client}
}

func (c *Client) List(ctx context.Context) ([]Clip, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	var wire []wireClip
	err := c.do(ctx, c.http.R(), http.MethodGet, collection, &wire)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list clips")
		return nil, err
	}

	clips := make([]Clip, 0, len(wire))
	for _, w := range wire {
		clips = append(clips, w.clip())
	}
	span.SetAttributes(attribute.Int("count", len(clips)))
	return clips, nil
}

func (c *Client) Create(ctx context.Context, uid, recipeID, comment string) (Clip, error) {
	ctx, span := tracer.Start(ctx, "Create")
	defer span.End()

	span.SetAttributes(attribute.String("recipe_id", recipeID))

	req := c.http.R().SetBody(map[string]string{
		"uid":     uid,
		"cookid":  recipeID,
		"comment": comment,
	})
	var created wireClip
	err := c.do(ctx, req, http.MethodPost, collection, &created)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create clip")
		return Clip{}, err
	}
	return created.clip(), nil
}

func (c *Client) Update(ctx context.Context, clipID, comment string) (Clip, error) {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()

	span.SetAttributes(attribute.String("clip_id", clipID))

	req := c.http.R().SetBody(map[string]string{"comment": comment})
	var updated wireClip
	err := c.do(ctx, req, http.MethodPut, itemPath(clipID), &updated)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update clip")
		return Clip{}, err
	}
	return updated.clip(), nil
}

func (c *Client) Delete(ctx context.Context, clipID string) error {
	ctx, span := tracer.Start(ctx, "Delete")
	defer span.End()

	span.SetAttributes(attribute.String("clip_id", clipID))

	err := c.do(ctx, c.http.R(), http.MethodDelete, itemPath(clipID), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete clip")
		return err
	}
	return nil
}

func itemPath(clipID string) string {
	return collection + "/" + url.PathEscape(clipID)
}

// notFoundError matches both the TransportError and ErrNotFound.
type notFoundError struct {
	err *upstream.TransportError
}

func (e notFoundError) Error() string {
	return e.err.Error()
}

func (e notFoundError) Unwrap() []error {
	return []error{e.err, ErrNotFound}
}

func (c *Client) do(ctx context.Context, req *resty.Request, method, path string, out any) error {
	op := method + " " + path

	res, err := req.SetContext(ctx).Execute(method, path)
	if err != nil {
		return &upstream.TransportError{Service: ServiceName, Op: op, Err: err}
	}
	if res.IsError() {
		terr := &upstream.TransportError{
			Service: ServiceName,
			Op:      op,
			Status:  res.StatusCode(),
			Body:    upstream.Snippet(res.Body()),
		}
		if res.StatusCode() == http.StatusNotFound && method != http.MethodGet {
			return notFoundError{terr}
		}
		return terr
	}
	if out == nil {
		return nil
	}

	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		return &upstream.TransportError{
			Service: ServiceName,
			Op:      op,
			Status:  res.StatusCode(),
			Body:    upstream.Snippet(res.Body()),
			Err:     fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

// NumericID parses a clip id as a number, ok is false for non-numeric ids.
func NumericID(id string) (n int64, ok bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil
}
