package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Domenick1991/farefinder/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterScope   = "github.com/Domenick1991/farefinder/internal/amadeus"
	acceptHeader = "application/vnd.amadeus+json"

	PathFlightDates        = "/shopping/flight-dates"
	PathFlightDestinations = "/shopping/flight-destinations"
)

// Tokens is the part of TokenCache the client factory depends on.
type Tokens interface {
	Get(ctx context.Context) (string, error)
	Invalidate()
}

// ClientFactory builds clients authorized with the current bearer token.
type ClientFactory struct {
	baseURL    string
	tokens     Tokens
	httpClient *http.Client
	requests   metric.Int64Counter
}

func NewClientFactory(baseURL string, tokens Tokens, timeout time.Duration, transport http.RoundTripper) *ClientFactory {
	return &ClientFactory{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		requests: telemetry.Counter(meterScope, "amadeus.upstream.requests", "Data calls to the flight-pricing provider"),
	}
}

// Authorized returns a client for the current token, refreshing it if needed.
func (f *ClientFactory) Authorized(ctx context.Context) (*Client, error) {
	token, err := f.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}
	return f.newClient(token), nil
}

func (f *ClientFactory) newClient(token string) *Client {
	return &Client{
		baseURL:    f.baseURL,
		token:      token,
		httpClient: f.httpClient,
		requests:   f.requests,
	}
}

// Invalidate drops the cached token after the provider rejected it.
func (f *ClientFactory) Invalidate() {
	f.tokens.Invalidate()
}

// Client issues bearer-authorized GETs against the provider. It holds no
// state besides the token it was built with.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	requests   metric.Int64Counter
}

// Get performs GET baseURL+path?params and returns the body unmodified on a
// 2xx response. Any other outcome is an *UpstreamError.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build amadeus request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(ctx, path, 0)
		return nil, &UpstreamError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	c.record(ctx, path, resp.StatusCode)
	if err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}

func (c *Client) record(ctx context.Context, path string, status int) {
	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("status", strconv.Itoa(status)),
	))
}
