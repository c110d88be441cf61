package fxrates

import (
	"context"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/transport"
)

const (
	defaultFrankfurterURL = "https://api.frankfurter.app"
	defaultOpenERURL      = "https://open.er-api.com/v6"
)

// Table is a set of rates from one base currency.
type Table struct {
	Base   string
	Rates  map[string]float64
	AsOf   string
	Source string
}

// Rate returns the rate for code, failing when it is missing, non-finite or
// not positive.
func (t Table) Rate(code string) (float64, bool) {
	rate, ok := t.Rates[code]
	if !ok || !market.Positive(rate) {
		return 0, false
	}
	return rate, true
}

// Client reads live exchange rates from Frankfurter and open.er-api.
type Client struct {
	frankfurterURL string
	openERURL      string
	http           *transport.Client
}

// Option configures a new Client.
type Option func(*Client)

// WithFrankfurterURL overrides the Frankfurter API root.
func WithFrankfurterURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.frankfurterURL = u
		}
	}
}

// WithOpenERURL overrides the open.er-api root.
func WithOpenERURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.openERURL = u
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

// NewClient constructs an FX client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		frankfurterURL: defaultFrankfurterURL,
		openERURL:      defaultOpenERURL,
		http:           transport.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Frankfurter fetches /latest?from=base&to=quotes.
func (c *Client) Frankfurter(ctx context.Context, base string, quotes []string) (Table, error) {
	params := url.Values{}
	params.Set("from", base)
	if len(quotes) > 0 {
		params.Set("to", strings.Join(quotes, ","))
	}
	root, err := c.get(ctx, market.ProviderFrankfurter, c.frankfurterURL+"/latest?"+params.Encode())
	if err != nil {
		return Table{}, err
	}
	return Table{
		Base:   base,
		Rates:  parseRates(root.Get("rates")),
		AsOf:   root.Get("date").String(),
		Source: market.ProviderFrankfurter,
	}, nil
}

// OpenER fetches /latest/{base}. Only result=success payloads are accepted.
func (c *Client) OpenER(ctx context.Context, base string) (Table, error) {
	root, err := c.get(ctx, market.ProviderOpenER, c.openERURL+"/latest/"+url.PathEscape(base))
	if err != nil {
		return Table{}, err
	}
	if root.Get("result").String() != "success" {
		return Table{}, market.UpstreamError(market.ProviderOpenER, 502, "FX provider fetch failed", root.Value())
	}
	return Table{
		Base:   base,
		Rates:  parseRates(root.Get("rates")),
		AsOf:   root.Get("time_last_update_utc").String(),
		Source: market.ProviderOpenER,
	}, nil
}

func (c *Client) get(ctx context.Context, provider, endpoint string) (gjson.Result, error) {
	resp, err := c.http.Get(ctx, endpoint, nil)
	if err != nil {
		logx.WithContext(ctx).Errorf("fxrates: %s err=%v", provider, err)
		return gjson.Result{}, market.NetworkError(provider, err)
	}
	env := market.Response(resp.Status, resp.Body)
	if !env.OK {
		return gjson.Result{}, market.FromEnvelope(provider, "FX provider fetch failed", env)
	}
	return env.Result(), nil
}

func parseRates(rates gjson.Result) map[string]float64 {
	out := make(map[string]float64)
	rates.ForEach(func(code, rate gjson.Result) bool {
		out[strings.ToUpper(code.String())] = market.Num(rate)
		return true
	})
	return out
}
