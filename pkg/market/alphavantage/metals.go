package alphavantage

import (
	"context"
	"math"
	"net/url"
	"sort"

	"github.com/tidwall/gjson"

	"marketdash-api/pkg/market"
)

// DailyClose is one FX_DAILY row.
type DailyClose struct {
	Date  string
	Time  float64
	Close float64
}

// Spot is a GOLD_SILVER_SPOT reading.
type Spot struct {
	Price     float64
	PrevClose float64
}

// ExchangeRate returns the realtime rate from one currency code to another.
func (c *Client) ExchangeRate(ctx context.Context, from, to string) (float64, error) {
	params := url.Values{}
	params.Set("function", "CURRENCY_EXCHANGE_RATE")
	params.Set("from_currency", from)
	params.Set("to_currency", to)
	env, err := c.Query(ctx, params)
	if err != nil {
		return math.NaN(), market.AsError(providerName, err)
	}
	if !env.OK {
		return math.NaN(), market.FromEnvelope(providerName, "Alpha Vantage exchange rate failed", env)
	}
	rate := market.Num(market.Field(market.Field(env.Result(), "Realtime Currency Exchange Rate"), "5. Exchange Rate", "exchange_rate"))
	if !market.Finite(rate) {
		return math.NaN(), market.NotFoundError("Alpha Vantage exchange rate missing", nil)
	}
	return rate, nil
}

// DailyCloses returns FX_DAILY closes ordered by date.
func (c *Client) DailyCloses(ctx context.Context, from, to string) ([]DailyClose, error) {
	params := url.Values{}
	params.Set("function", "FX_DAILY")
	params.Set("from_symbol", from)
	params.Set("to_symbol", to)
	params.Set("outputsize", "compact")
	env, err := c.Query(ctx, params)
	if err != nil {
		return nil, market.AsError(providerName, err)
	}
	if !env.OK {
		return nil, market.FromEnvelope(providerName, "Alpha Vantage daily series failed", env)
	}
	return ParseDailyCloses(env.Result()), nil
}

// ParseDailyCloses extracts the "Time Series FX (Daily)" block.
func ParseDailyCloses(root gjson.Result) []DailyClose {
	series := market.Field(root, "Time Series FX (Daily)")
	if !series.IsObject() {
		return nil
	}
	members := series.Map()
	dates := make([]string, 0, len(members))
	for date := range members {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]DailyClose, 0, len(dates))
	for _, date := range dates {
		ts := math.NaN()
		if sec, ok := market.ParseTimestamp(gjson.Parse(`"` + date + `"`)); ok {
			ts = float64(sec)
		}
		out = append(out, DailyClose{
			Date:  date,
			Time:  ts,
			Close: market.Num(market.Field(members[date], "4. close")),
		})
	}
	return out
}

// MetalSpot reads GOLD_SILVER_SPOT for metals that have a spot feed.
func (c *Client) MetalSpot(ctx context.Context, metal market.Metal) (Spot, error) {
	env, err := c.QueryMetal(ctx, "GOLD_SILVER_SPOT", metal, nil)
	if err != nil {
		return Spot{}, market.AsError(providerName, err)
	}
	if !env.OK {
		return Spot{}, market.FromEnvelope(providerName, "Alpha Vantage spot failed", env)
	}
	return ParseSpot(env.Result()), nil
}

// ParseSpot accepts the field spellings seen across spot payload versions.
func ParseSpot(root gjson.Result) Spot {
	row := root
	if data := market.Field(root, "data"); data.IsArray() && len(data.Array()) > 0 {
		row = data.Array()[0]
	}
	return Spot{
		Price:     market.FirstNum(market.Field(row, "price", "Price", "spot_price", "Spot Price")),
		PrevClose: market.FirstNum(market.Field(row, "previous_close", "prev_close", "close", "Previous Close")),
	}
}

// HistoryInterval picks the GOLD_SILVER_HISTORY granularity for a window.
func HistoryInterval(days int) string {
	switch {
	case days <= 7:
		return "daily"
	case days <= 60:
		return "weekly"
	default:
		return "monthly"
	}
}

// MetalHistory reads GOLD_SILVER_HISTORY rows as a candle series.
func (c *Client) MetalHistory(ctx context.Context, metal market.Metal, interval string) (market.Series, error) {
	extra := url.Values{}
	extra.Set("interval", interval)
	env, err := c.QueryMetal(ctx, "GOLD_SILVER_HISTORY", metal, extra)
	if err != nil {
		return market.Series{}, market.AsError(providerName, err)
	}
	if !env.OK {
		return market.Series{}, market.FromEnvelope(providerName, "Metals candles fetch failed", env)
	}
	return ParseHistory(env.Result()), nil
}

// ParseHistory extracts data[] rows keyed by date or timestamp.
func ParseHistory(root gjson.Result) market.Series {
	var rows []market.Row
	market.Field(root, "data").ForEach(func(_, row gjson.Result) bool {
		ts := math.NaN()
		if sec, ok := market.ParseTimestamp(market.Field(row, "date", "timestamp")); ok {
			ts = float64(sec)
		}
		rows = append(rows, market.ClosePoint(ts, market.FirstNum(market.Field(row, "price", "close", "value"))))
		return true
	})
	return market.NewSeries(rows)
}
