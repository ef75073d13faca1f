package docindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kailas-cloud/docindex/internal/version"
)

const (
	headerAPIKey    = "x-api-key"
	contentTypeJSON = "application/json"
)

// Config holds the settings every Client requires.
type Config struct {
	APIKey  string
	BaseURL string
}

// Client is the document API entry point. It is safe for concurrent use.
type Client struct {
	apiKey    string
	baseURL   string
	http      *http.Client
	userAgent string
	obs       *observer
}

// New creates a Client. It fails before any network activity when
// the API key or base URL is empty.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}

	o := &clientOptions{}
	for _, opt := range opts {
		opt.apply(o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{}
	}
	if o.userAgent == "" {
		o.userAgent = "docindex-go/" + version.Version
	}

	obs, err := newObserver(o.logger, o.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		http:      o.httpClient,
		userAgent: o.userAgent,
		obs:       obs,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(cfg Config, opts ...Option) *Client {
	c, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// call describes one logical API operation.
type call struct {
	op     string
	method string
	path   string
	params []queryParam // GET only
	body   any          // nil = no body
}

// do sends exactly one request and normalizes the outcome.
// It never returns an error; failures are reported through Response.
func do[T any](ctx context.Context, c *Client, r call) (resp Response[T]) {
	start := time.Now()
	defer func() { c.obs.observe(r.op, r.method, r.path, start, resp.Status, resp.Err) }()

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return clientFailure[T](err)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return clientFailure[T](err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return clientFailure[T](fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		var data T
		if err := json.Unmarshal(raw, &data); err != nil {
			return clientFailure[T](fmt.Errorf("decode response: %w", err))
		}
		return Response[T]{OK: true, Status: httpResp.StatusCode, Data: data}
	}

	apiErr, err := decodeErrorBody(raw, httpResp.StatusCode)
	if err != nil {
		return clientFailure[T](err)
	}
	return Response[T]{Status: httpResp.StatusCode, Err: apiErr}
}

func (c *Client) newRequest(ctx context.Context, r call) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + r.path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if r.method == http.MethodGet && len(r.params) > 0 {
		u.RawQuery, err = encodeQuery(u.RawQuery, r.params)
		if err != nil {
			return nil, err
		}
	}

	var body io.Reader = http.NoBody
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	return req, nil
}
