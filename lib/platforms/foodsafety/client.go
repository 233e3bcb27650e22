// Package foodsafety is a client for the COOKRCP01 recipe service of the
// Korean food safety open api.
package foodsafety

import (
	"context"
	"cookclip/lib/restyutil"
	"cookclip/lib/upstream"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	ServiceName     = "COOKRCP01"
	DefaultBaseUrl  = "https://openapi.foodsafetykorea.go.kr"
	DefaultPageSize = 30
	// MaxBatch is the widest range the service returns in one call.
	MaxBatch = 300

	codeOK    = "INFO-000"
	codeEmpty = "INFO-200"
)

type ClientOptions struct {
	BaseUrl string
	ApiKey  string
	// RequestsPerSecond defaults to 2.
	RequestsPerSecond float64
	// Timeout defaults to 30 seconds.
	Timeout time.Duration
}

type Client struct {
	http    *resty.Client
	baseUrl string
	apiKey  string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if strings.TrimSpace(opts.ApiKey) == "" {
		return nil, fmt.Errorf("foodsafety: api key is required")
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	baseUrl := strings.TrimSuffix(opts.BaseUrl, "/")

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("accept", "application/json")

	// burst >= 2 so concurrent callers queue instead of failing
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2)
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})
	restyutil.InstrumentClient(client, tracer, restyInstrumentOutput)

	return &Client{
		http:    client,
		baseUrl: baseUrl,
		apiKey:  opts.ApiKey,
	}, nil
}

// escapeTerm percent-encodes everything but unreserved characters so `=`,
// `&` and `+` in a term cannot change the filter segment.
func escapeTerm(term string) string {
	return strings.ReplaceAll(url.QueryEscape(strings.TrimSpace(term)), "+", "%20")
}

// PagePath is the request path for rows start..end (1-based, inclusive).
func (c *Client) PagePath(start, end int, query Query) string {
	path := fmt.Sprintf(
		"/api/%s/%s/json/%d/%d",
		url.PathEscape(c.apiKey), ServiceName, start, end,
	)
	if query.Active() {
		path += fmt.Sprintf(
			"/%s=%%22%s%%22",
			query.Field.param(), escapeTerm(query.Term),
		)
	}
	return path
}

// PageURL is PagePath joined with the base url, used as a cache key.
func (c *Client) PageURL(start, end int, query Query) string {
	return c.baseUrl + c.PagePath(start, end, query)
}

type result struct {
	Code    string `json:"CODE"`
	Message string `json:"MSG"`
}

type serviceBody struct {
	Result *result   `json:"RESULT"`
	Rows   []wireRow `json:"row"`
}

type response struct {
	Service *serviceBody `json:"COOKRCP01"`
	// present instead of COOKRCP01 when the key or path is rejected
	Result *result `json:"RESULT"`
}

// FetchPage returns up to size recipes starting at the 1-based offset
// start. An empty slice with a nil error means there are no (more)
// matching recipes.
func (c *Client) FetchPage(ctx context.Context, start, size int, query Query) ([]Recipe, error) {
	ctx, span := tracer.Start(ctx, "FetchPage")
	defer span.End()

	span.SetAttributes(
		attribute.Int("start", start),
		attribute.Int("size", size),
		attribute.String("term", query.Term),
		attribute.String("field", query.Field.String()),
	)

	if start < 1 || size < 1 {
		err := fmt.Errorf("invalid page range start=%d size=%d", start, size)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid range")
		return nil, err
	}
	if size > MaxBatch {
		size = MaxBatch
	}

	recipes, err := c.fetch(ctx, c.PagePath(start, start+size-1, query))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(recipes)))
	return recipes, nil
}

// FetchFullCatalog fetches the first MaxBatch recipes in one request.
func (c *Client) FetchFullCatalog(ctx context.Context) ([]Recipe, error) {
	ctx, span := tracer.Start(ctx, "FetchFullCatalog")
	defer span.End()

	recipes, err := c.fetch(ctx, c.PagePath(1, MaxBatch, Query{}))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch catalog")
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(recipes)))
	return recipes, nil
}

// FullCatalogURL identifies the FetchFullCatalog request.
func (c *Client) FullCatalogURL() string {
	return c.PageURL(1, MaxBatch, Query{})
}

func (c *Client) fetch(ctx context.Context, path string) ([]Recipe, error) {
	op := "GET " + path

	res, err := c.http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, &upstream.TransportError{Service: ServiceName, Op: op, Err: err}
	}
	if res.IsError() {
		return nil, &upstream.TransportError{
			Service: ServiceName,
			Op:      op,
			Status:  res.StatusCode(),
			Body:    upstream.Snippet(res.Body()),
		}
	}

	var body response
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		return nil, &upstream.TransportError{
			Service: ServiceName,
			Op:      op,
			Status:  res.StatusCode(),
			Body:    upstream.Snippet(res.Body()),
			Err:     fmt.Errorf("decode response: %w", err),
		}
	}

	if body.Service == nil {
		if body.Result != nil {
			return checkResult(body.Result, nil)
		}
		return nil, &upstream.TransportError{
			Service: ServiceName,
			Op:      op,
			Status:  res.StatusCode(),
			Body:    upstream.Snippet(res.Body()),
			Err:     fmt.Errorf("response is missing %s", ServiceName),
		}
	}
	return checkResult(body.Service.Result, body.Service.Rows)
}

func checkResult(res *result, rows []wireRow) ([]Recipe, error) {
	code := codeOK
	if res != nil && res.Code != "" {
		code = res.Code
	}
	switch code {
	case codeOK:
	case codeEmpty:
		return []Recipe{}, nil
	default:
		msg := ""
		if res != nil {
			msg = res.Message
		}
		return nil, &upstream.LogicalError{Service: ServiceName, Code: code, Message: msg}
	}

	recipes := make([]Recipe, 0, len(rows))
	for _, row := range rows {
		recipes = append(recipes, row.recipe())
	}
	return recipes, nil
}
