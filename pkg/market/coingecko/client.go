package coingecko

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/cache"
	"marketdash-api/pkg/market/transport"
)

const (
	providerName     = market.ProviderCoinGecko
	defaultBaseURL   = "https://api.coingecko.com/api/v3"
	defaultTTL       = 20 * time.Second
	defaultSearchTTL = 12 * time.Second
)

// Statuses after which a keyed request is retried without credentials.
var keyRejectedStatuses = map[int]bool{
	http.StatusBadRequest:      true,
	http.StatusUnauthorized:    true,
	http.StatusForbidden:       true,
	http.StatusTooManyRequests: true,
}

// Client calls the CoinGecko v3 API. The key is optional.
type Client struct {
	baseURL   string
	apiKey    string
	http      *transport.Client
	loader    *cache.Loader
	ttl       time.Duration
	searchTTL time.Duration
}

// Option configures a new Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithAPIKey sets the demo or pro key.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
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

// WithTTL overrides the freshness windows for market data and search.
func WithTTL(data, search time.Duration) Option {
	return func(c *Client) {
		if data > 0 {
			c.ttl = data
		}
		if search > 0 {
			c.searchTTL = search
		}
	}
}

// NewClient constructs a CoinGecko client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		http:      transport.New(),
		ttl:       defaultTTL,
		searchTTL: defaultSearchTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs one cached call against path.
func (c *Client) Get(ctx context.Context, path string, params url.Values, ttl time.Duration) (market.Envelope, error) {
	key := cache.Key(providerName, path, params)
	return c.loader.Load(ctx, key, ttl, func(ctx context.Context) (market.Envelope, error) {
		return c.fetch(ctx, path, params)
	})
}

func (c *Client) fetch(ctx context.Context, path string, params url.Values) (market.Envelope, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	if c.apiKey == "" {
		return c.do(ctx, endpoint, nil)
	}
	keyed := http.Header{}
	keyed.Set("x-cg-demo-api-key", c.apiKey)
	keyed.Set("x-cg-pro-api-key", c.apiKey)
	env, err := c.do(ctx, endpoint, keyed)
	if err != nil || env.OK || !keyRejectedStatuses[env.Status] {
		return env, err
	}
	logx.WithContext(ctx).Infof("coingecko: keyed request rejected status=%d, retrying without key", env.Status)
	return c.do(ctx, endpoint, nil)
}

func (c *Client) do(ctx context.Context, endpoint string, header http.Header) (market.Envelope, error) {
	resp, err := c.http.Get(ctx, endpoint, header)
	if err != nil {
		logx.WithContext(ctx).Errorf("coingecko: err=%v", err)
		return market.Envelope{}, err
	}
	return market.Response(resp.Status, resp.Body), nil
}

func (c *Client) result(ctx context.Context, path string, params url.Values, ttl time.Duration, failMsg string) (gjson.Result, error) {
	env, err := c.Get(ctx, path, params, ttl)
	if err != nil {
		return gjson.Result{}, market.AsError(providerName, err)
	}
	if !env.OK {
		return gjson.Result{}, market.FromEnvelope(providerName, failMsg, env)
	}
	return env.Result(), nil
}

// Coin is a /search hit.
type Coin struct {
	ID     string
	Symbol string
	Name   string
}

// Search looks up coins by name or ticker.
func (c *Client) Search(ctx context.Context, query string) ([]Coin, error) {
	params := url.Values{}
	params.Set("query", query)
	root, err := c.result(ctx, "/search", params, c.searchTTL, "Crypto search failed")
	if err != nil {
		return nil, err
	}
	var out []Coin
	root.Get("coins").ForEach(func(_, coin gjson.Result) bool {
		out = append(out, Coin{
			ID:     coin.Get("id").String(),
			Symbol: strings.ToUpper(coin.Get("symbol").String()),
			Name:   coin.Get("name").String(),
		})
		return true
	})
	return out, nil
}

// MarketRow is one /coins/markets entry. Missing numbers are NaN.
type MarketRow struct {
	ID            string
	Symbol        string
	Name          string
	Image         string
	Price         float64
	Change        float64
	PercentChange float64
	High          float64
	Low           float64
	Volume        float64
	MarketCap     float64
}

// MarketsQuery selects /coins/markets rows.
type MarketsQuery struct {
	IDs     []string
	Order   string
	PerPage int
}

// Markets fetches USD market rows with 24h change.
func (c *Client) Markets(ctx context.Context, q MarketsQuery) ([]MarketRow, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("price_change_percentage", "24h")
	if len(q.IDs) > 0 {
		params.Set("ids", strings.Join(q.IDs, ","))
	}
	if q.Order != "" {
		params.Set("order", q.Order)
	}
	if q.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(q.PerPage))
		params.Set("page", "1")
	}
	root, err := c.result(ctx, "/coins/markets", params, c.ttl, "Crypto markets fetch failed")
	if err != nil {
		return nil, err
	}
	return ParseMarkets(root), nil
}

// ParseMarkets reads a /coins/markets array.
func ParseMarkets(root gjson.Result) []MarketRow {
	if !root.IsArray() {
		return nil
	}
	var out []MarketRow
	root.ForEach(func(_, row gjson.Result) bool {
		out = append(out, MarketRow{
			ID:            row.Get("id").String(),
			Symbol:        strings.ToUpper(row.Get("symbol").String()),
			Name:          row.Get("name").String(),
			Image:         row.Get("image").String(),
			Price:         market.Num(row.Get("current_price")),
			Change:        market.Num(row.Get("price_change_24h")),
			PercentChange: market.FirstNum(row.Get("price_change_percentage_24h"), row.Get("price_change_percentage_24h_in_currency")),
			High:          market.Num(row.Get("high_24h")),
			Low:           market.Num(row.Get("low_24h")),
			Volume:        market.Num(row.Get("total_volume")),
			MarketCap:     market.Num(row.Get("market_cap")),
		})
		return true
	})
	return out
}

// MarketChart fetches USD prices and volumes for id over days. Windows of a
// day or less use hourly points.
func (c *Client) MarketChart(ctx context.Context, id string, days int) (market.Series, error) {
	interval := "daily"
	if days <= 1 {
		interval = "hourly"
	}
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("days", strconv.Itoa(days))
	params.Set("interval", interval)
	root, err := c.result(ctx, "/coins/"+url.PathEscape(id)+"/market_chart", params, c.ttl, "Crypto candles fetch failed")
	if err != nil {
		return market.Series{}, err
	}
	return ParseMarketChart(root), nil
}

// ParseMarketChart zips prices[[ms, price]] with total_volumes by index.
func ParseMarketChart(root gjson.Result) market.Series {
	prices := root.Get("prices").Array()
	volumes := root.Get("total_volumes").Array()
	rows := make([]market.Row, 0, len(prices))
	for i, p := range prices {
		row := market.ClosePoint(market.Num(p.Get("0"))/1000, market.Num(p.Get("1")))
		if i < len(volumes) {
			row.Volume = market.Num(volumes[i].Get("1"))
		}
		rows = append(rows, row)
	}
	return market.NewSeries(rows)
}
