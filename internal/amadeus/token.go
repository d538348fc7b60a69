package amadeus

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Domenick1991/farefinder/internal/telemetry"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

const tokenPath = "/security/oauth2/token"

// Fetcher performs one client-credentials exchange.
type Fetcher interface {
	Fetch(ctx context.Context) (*oauth2.Token, error)
}

// ClientCredentials fetches tokens from the provider's OAuth2 endpoint with a
// form-encoded client_credentials grant.
type ClientCredentials struct {
	conf       clientcredentials.Config
	httpClient *http.Client
}

func NewClientCredentials(baseURL, clientID, clientSecret string, httpClient *http.Client) *ClientCredentials {
	return &ClientCredentials{
		conf: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     baseURL + tokenPath,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
}

func (c *ClientCredentials) Fetch(ctx context.Context) (*oauth2.Token, error) {
	if c.conf.ClientID == "" || c.conf.ClientSecret == "" {
		return nil, ErrCredentialsMissing
	}
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	tok, err := c.conf.Token(ctx)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			return nil, &TokenError{Status: rErr.Response.StatusCode, Err: err}
		}
		return nil, &TokenError{Err: err}
	}
	return tok, nil
}

// TokenCache holds the current bearer token. A token is usable while
// now < expiresAt - skew. Concurrent refreshes are collapsed into one call.
type TokenCache struct {
	fetcher Fetcher
	skew    time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu        sync.RWMutex
	value     string
	expiresAt time.Time

	group     singleflight.Group
	refreshes metric.Int64Counter
}

type TokenCacheOption func(*TokenCache)

// WithClock replaces time.Now, used by tests to move across the expiry boundary.
func WithClock(now func() time.Time) TokenCacheOption {
	return func(c *TokenCache) {
		c.now = now
	}
}

func WithLogger(logger *slog.Logger) TokenCacheOption {
	return func(c *TokenCache) {
		c.logger = logger
	}
}

func NewTokenCache(fetcher Fetcher, skew time.Duration, opts ...TokenCacheOption) *TokenCache {
	c := &TokenCache{
		fetcher:   fetcher,
		skew:      skew,
		now:       time.Now,
		logger:    slog.Default(),
		refreshes: telemetry.Counter(meterScope, "amadeus.token.refreshes", "Client-credentials token fetches"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsValid reports whether a cached token exists and is outside the skew window.
func (c *TokenCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validLocked()
}

func (c *TokenCache) validLocked() bool {
	return c.value != "" && c.now().Before(c.expiresAt.Add(-c.skew))
}

// Get returns the cached token, refreshing it first when it is not valid.
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.validLocked() {
		token := c.value
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	// The shared fetch outlives any single caller; the fetcher's HTTP timeout
	// bounds it instead.
	ch := c.group.DoChan("token", func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Invalidate clears the cached token so the next Get refreshes.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.value = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	tok, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.logger.Error("amadeus token refresh failed", "error", err)
		return "", err
	}
	c.refreshes.Add(ctx, 1)

	c.mu.Lock()
	c.value = tok.AccessToken
	c.expiresAt = tok.Expiry
	c.mu.Unlock()

	c.logger.Info("amadeus token refreshed", "expires_at", tok.Expiry)
	return tok.AccessToken, nil
}
