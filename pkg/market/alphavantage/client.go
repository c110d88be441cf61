package alphavantage

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/cache"
	"marketdash-api/pkg/market/transport"
)

const (
	providerName   = market.ProviderAlphaVantage
	defaultBaseURL = "https://www.alphavantage.co/query"
	defaultTTL     = 65 * time.Second
	keyEnv         = "ALPHAVANTAGE_API_KEY"
)

// Client queries Alpha Vantage. Every response passes through the cache
// loader so quota notices can fall back to the last good payload.
type Client struct {
	baseURL string
	apiKey  string
	keyEnv  string
	http    *transport.Client
	loader  *cache.Loader
	ttl     time.Duration
}

// Option configures a new Client.
type Option func(*Client)

// WithBaseURL overrides the query endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithAPIKey sets the credential and the variable it came from.
func WithAPIKey(key, env string) Option {
	return func(c *Client) {
		c.apiKey = key
		if env != "" {
			c.keyEnv = env
		}
	}
}

// WithTransport injects the HTTP transport.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		if t != nil {
			c.http = t
		}
	}
}

// WithLoader injects the response cache loader.
func WithLoader(l *cache.Loader) Option {
	return func(c *Client) { c.loader = l }
}

// WithTTL overrides the freshness window.
func WithTTL(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// NewClient constructs an Alpha Vantage client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		keyEnv:  keyEnv,
		http:    transport.New(),
		ttl:     defaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasKey reports whether a credential is configured.
func (c *Client) HasKey() bool { return c.apiKey != "" }

// Query performs one cached API call. A missing credential fails before any
// network or cache access.
func (c *Client) Query(ctx context.Context, params url.Values) (market.Envelope, error) {
	if c.apiKey == "" {
		return market.Envelope{}, market.CredentialError(providerName, c.keyEnv)
	}
	key := cache.Key(providerName, "", params)
	return c.loader.Load(ctx, key, c.ttl, func(ctx context.Context) (market.Envelope, error) {
		return c.fetch(ctx, params)
	})
}

func (c *Client) fetch(ctx context.Context, params url.Values) (market.Envelope, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("apikey", c.apiKey)

	resp, err := c.http.Get(ctx, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		logx.WithContext(ctx).Errorf("alphavantage: function=%s err=%v", params.Get("function"), err)
		return market.Envelope{}, err
	}
	if !resp.OK() {
		return market.Response(resp.Status, resp.Body), nil
	}

	root := gjson.ParseBytes(resp.Body)
	if notice := firstString(root, "Note", "Information"); notice != "" {
		return market.Failure(http.StatusTooManyRequests, "Alpha Vantage rate limit", notice), nil
	}
	if msg := market.Field(root, "Error Message"); msg.Exists() {
		return market.Failure(http.StatusBadRequest, "Alpha Vantage error", msg.Value()), nil
	}
	return market.Success(resp.Body), nil
}

// QueryMetal tries the metal's provider code first and its ISO symbol second.
func (c *Client) QueryMetal(ctx context.Context, function string, metal market.Metal, extra url.Values) (market.Envelope, error) {
	build := func(symbol string) url.Values {
		params := url.Values{}
		for k, v := range extra {
			params[k] = v
		}
		params.Set("function", function)
		params.Set("symbol", symbol)
		return params
	}

	first, err := c.Query(ctx, build(metal.AlphaVantageCode))
	if err != nil || first.OK || metal.AlphaVantageCode == metal.Symbol {
		return first, err
	}
	return c.Query(ctx, build(metal.Symbol))
}

func firstString(root gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := market.Field(root, key); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
