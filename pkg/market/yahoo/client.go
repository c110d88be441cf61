package yahoo

import (
	"context"
	"fmt"
	"math"
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
	providerName   = market.ProviderYahoo
	defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultTTL     = 60 * time.Second
	userAgent      = "Mozilla/5.0"
)

// Meta carries the chart header fields used for snapshots.
type Meta struct {
	RegularMarketPrice float64
	PreviousClose      float64
	DayHigh            float64
	DayLow             float64
	Currency           string
}

// Chart is the first result of a chart response.
type Chart struct {
	Meta   Meta
	Series market.Series
	found  bool
}

// Empty reports whether the response carried no result.
func (c Chart) Empty() bool { return !c.found }

// Client reads the public chart endpoint.
type Client struct {
	baseURL string
	http    *transport.Client
	loader  *cache.Loader
	ttl     time.Duration
}

// Option configures a new Client.
type Option func(*Client)

// WithBaseURL overrides the chart endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
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

// NewClient constructs a Yahoo chart client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    transport.New(transport.WithUserAgent(userAgent)),
		ttl:     defaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chart fetches ticker history for a range such as "5d" or "1mo".
func (c *Client) Chart(ctx context.Context, ticker, rng, interval string) (Chart, error) {
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", interval)
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(ticker), params.Encode())

	key := cache.Key(providerName, ticker, params)
	env, err := c.loader.Load(ctx, key, c.ttl, func(ctx context.Context) (market.Envelope, error) {
		resp, err := c.http.Get(ctx, endpoint, http.Header{"User-Agent": {userAgent}})
		if err != nil {
			logx.WithContext(ctx).Errorf("yahoo: chart ticker=%s err=%v", ticker, err)
			return market.Envelope{}, err
		}
		return market.Response(resp.Status, resp.Body), nil
	})
	if err != nil {
		return Chart{}, market.AsError(providerName, err)
	}
	if !env.OK {
		return Chart{}, market.FromEnvelope(providerName, "Yahoo chart fetch failed", env)
	}
	return ParseChart(env.Result()), nil
}

// ParseChart reads chart.result[0]. A missing result yields an empty Chart.
func ParseChart(root gjson.Result) Chart {
	result := root.Get("chart.result.0")
	if !result.Exists() || result.Type == gjson.Null {
		return Chart{}
	}
	meta := result.Get("meta")
	chart := Chart{
		Meta: Meta{
			RegularMarketPrice: market.Num(meta.Get("regularMarketPrice")),
			PreviousClose:      market.Num(meta.Get("previousClose")),
			DayHigh:            market.Num(meta.Get("regularMarketDayHigh")),
			DayLow:             market.Num(meta.Get("regularMarketDayLow")),
			Currency:           meta.Get("currency").String(),
		},
		found: true,
	}

	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	timestamps := result.Get("timestamp").Array()

	rows := make([]market.Row, 0, len(timestamps))
	for i, ts := range timestamps {
		rows = append(rows, market.Row{
			Time:   market.Num(ts),
			Open:   at(opens, i),
			High:   at(highs, i),
			Low:    at(lows, i),
			Close:  at(closes, i),
			Volume: at(volumes, i),
		})
	}
	chart.Series = market.NewSeries(rows)
	return chart
}

// CandleRange maps a day window to the chart range parameter.
func CandleRange(days int) string {
	switch {
	case days <= 7:
		return "7d"
	case days <= 30:
		return "1mo"
	case days <= 120:
		return "6mo"
	default:
		return "1y"
	}
}

func at(values []gjson.Result, i int) float64 {
	if i < len(values) {
		return market.Num(values[i])
	}
	return math.NaN()
}
