package finnhub

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/transport"
)

const (
	providerName   = market.ProviderFinnhub
	defaultBaseURL = "https://finnhub.io/api/v1"
	keyEnv         = "FINNHUB_API_KEY"
)

// Client calls the Finnhub REST API. Responses are live and never cached.
type Client struct {
	baseURL string
	apiKey  string
	keyEnv  string
	http    *transport.Client
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

// WithAPIKey sets the token and the variable it came from.
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

// NewClient constructs a Finnhub client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		keyEnv:  keyEnv,
		http:    transport.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasKey reports whether a token is configured.
func (c *Client) HasKey() bool { return c.apiKey != "" }

// get performs one call and returns the parsed body of a 2xx response.
// failMsg becomes the error message for non-2xx responses.
func (c *Client) get(ctx context.Context, path string, params url.Values, failMsg string) (gjson.Result, error) {
	if c.apiKey == "" {
		return gjson.Result{}, market.CredentialError(providerName, c.keyEnv)
	}
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("token", c.apiKey)

	resp, err := c.http.Get(ctx, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		logx.WithContext(ctx).Errorf("finnhub: %s err=%v", path, err)
		return gjson.Result{}, market.NetworkError(providerName, err)
	}
	env := market.Response(resp.Status, resp.Body)
	if !env.OK {
		logx.WithContext(ctx).Errorf("finnhub: %s status=%d", path, resp.Status)
		return gjson.Result{}, market.FromEnvelope(providerName, failMsg, env)
	}
	return env.Result(), nil
}

// RawQuote mirrors the /quote payload. Missing fields are NaN.
type RawQuote struct {
	Current       float64
	Change        float64
	PercentChange float64
	High          float64
	Low           float64
	Open          float64
	PrevClose     float64
}

// Quote fetches the latest quote for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (RawQuote, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	root, err := c.get(ctx, "/quote", params, "Quote fetch failed")
	if err != nil {
		return RawQuote{}, err
	}
	return RawQuote{
		Current:       market.Num(root.Get("c")),
		Change:        market.Num(root.Get("d")),
		PercentChange: market.Num(root.Get("dp")),
		High:          market.Num(root.Get("h")),
		Low:           market.Num(root.Get("l")),
		Open:          market.Num(root.Get("o")),
		PrevClose:     market.Num(root.Get("pc")),
	}, nil
}

// Candles fetches OHLCV rows between from and to (Unix seconds).
func (c *Client) Candles(ctx context.Context, symbol, resolution string, from, to int64) (market.Series, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", resolution)
	params.Set("from", strconv.FormatInt(from, 10))
	params.Set("to", strconv.FormatInt(to, 10))
	root, err := c.get(ctx, "/stock/candle", params, "Finnhub error")
	if err != nil {
		return market.Series{}, err
	}
	if root.Get("s").String() != "ok" {
		return market.Series{}, market.NotFoundError("No candle data", root.Value())
	}
	return ParseCandles(root), nil
}

// ParseCandles zips the parallel t/o/h/l/c/v arrays.
func ParseCandles(root gjson.Result) market.Series {
	times := root.Get("t").Array()
	opens := root.Get("o").Array()
	highs := root.Get("h").Array()
	lows := root.Get("l").Array()
	closes := root.Get("c").Array()
	volumes := root.Get("v").Array()

	rows := make([]market.Row, 0, len(times))
	for i, ts := range times {
		rows = append(rows, market.Row{
			Time:   market.Num(ts),
			Open:   numAt(opens, i),
			High:   numAt(highs, i),
			Low:    numAt(lows, i),
			Close:  numAt(closes, i),
			Volume: numAt(volumes, i),
		})
	}
	return market.NewSeries(rows)
}

// Candidate is one /search result.
type Candidate struct {
	Symbol        string `json:"symbol"`
	DisplaySymbol string `json:"displaySymbol"`
	Description   string `json:"description"`
	Type          string `json:"type"`
}

// Search runs a symbol lookup.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	root, err := c.get(ctx, "/search", params, "Search failed")
	if err != nil {
		return nil, err
	}
	var out []Candidate
	root.Get("result").ForEach(func(_, item gjson.Result) bool {
		symbol := item.Get("symbol").String()
		if symbol == "" {
			return true
		}
		out = append(out, Candidate{
			Symbol:        symbol,
			DisplaySymbol: item.Get("displaySymbol").String(),
			Description:   item.Get("description").String(),
			Type:          item.Get("type").String(),
		})
		return true
	})
	return out, nil
}

// Metrics holds the fundamentals surfaced by the dashboard.
type Metrics struct {
	PERatio       float64
	Week52High    float64
	Week52Low     float64
	Beta          float64
	EPSTTM        float64
	DividendYield float64
}

// Metric fetches /stock/metric?metric=all.
func (c *Client) Metric(ctx context.Context, symbol string) (Metrics, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("metric", "all")
	root, err := c.get(ctx, "/stock/metric", params, "Metric fetch failed")
	if err != nil {
		return Metrics{}, err
	}
	m := root.Get("metric")
	return Metrics{
		PERatio:       market.FirstNum(m.Get("peTTM"), m.Get("peBasicExclExtraTTM")),
		Week52High:    market.Num(market.Field(m, "52WeekHigh")),
		Week52Low:     market.Num(market.Field(m, "52WeekLow")),
		Beta:          market.Num(m.Get("beta")),
		EPSTTM:        market.Num(m.Get("epsTTM")),
		DividendYield: market.Num(m.Get("dividendYieldIndicatedAnnual")),
	}, nil
}

// Profile is the company profile.
type Profile struct {
	Name                 string
	Ticker               string
	Logo                 string
	Exchange             string
	Industry             string
	MarketCapitalization float64
	IPO                  string
	Country              string
	WebURL               string
}

// Profile fetches /stock/profile2. An empty object means an unknown symbol.
func (c *Client) Profile(ctx context.Context, symbol string) (Profile, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	root, err := c.get(ctx, "/stock/profile2", params, "Company not found")
	if err != nil {
		return Profile{}, err
	}
	if !root.IsObject() || len(root.Map()) == 0 {
		return Profile{}, market.NotFoundError("Company not found", root.Value())
	}
	return Profile{
		Name:                 root.Get("name").String(),
		Ticker:               root.Get("ticker").String(),
		Logo:                 root.Get("logo").String(),
		Exchange:             root.Get("exchange").String(),
		Industry:             root.Get("finnhubIndustry").String(),
		MarketCapitalization: market.Num(root.Get("marketCapitalization")),
		IPO:                  root.Get("ipo").String(),
		Country:              root.Get("country").String(),
		WebURL:               root.Get("weburl").String(),
	}, nil
}

func numAt(values []gjson.Result, i int) float64 {
	if i < len(values) {
		return market.Num(values[i])
	}
	return market.Num(gjson.Result{})
}
