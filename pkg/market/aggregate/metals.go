package aggregate

import (
	"context"
	"math"
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/alphavantage"
	"marketdash-api/pkg/market/yahoo"
)

const metalQuoteCurrency = "USD"

// ResolveMetal maps user input to a catalog entry. Empty input selects gold.
func ResolveMetal(input string) (market.Metal, error) {
	if strings.TrimSpace(input) == "" {
		input = market.DefaultMetal
	}
	metal, ok := market.LookupMetal(input)
	if !ok {
		return market.Metal{}, market.InputError("Missing or unsupported metal id")
	}
	return metal, nil
}

// MetalQuote tries a single-source Yahoo snapshot first and otherwise
// assembles price and previous close independently from Alpha Vantage.
func (s *Service) MetalQuote(ctx context.Context, metal market.Metal) (market.Quote, error) {
	q, _, err := market.FirstSuccess(ctx,
		market.Strategy[market.Quote]{Name: market.ProviderYahoo, Attempt: func(ctx context.Context) (market.Quote, error) {
			return s.yahooMetalQuote(ctx, metal)
		}},
		market.Strategy[market.Quote]{Name: market.ProviderAlphaVantage, Attempt: func(ctx context.Context) (market.Quote, error) {
			return s.alphaVantageMetalQuote(ctx, metal)
		}},
	)
	return q, err
}

func (s *Service) yahooMetalQuote(ctx context.Context, metal market.Metal) (market.Quote, error) {
	chart, err := s.yahoo.Chart(ctx, metal.YahooTicker, "5d", "1d")
	if err != nil {
		return market.Quote{}, err
	}
	if chart.Empty() {
		return market.Quote{}, market.NotFoundError("No yahoo quote for "+metal.Symbol, nil)
	}
	price := chart.Meta.RegularMarketPrice
	if !market.Finite(price) {
		price = chart.Meta.PreviousClose
	}
	if !market.Finite(price) {
		return market.Quote{}, market.NotFoundError("No yahoo quote for "+metal.Symbol, nil)
	}
	q := market.NewQuote(metal.Symbol, market.ProviderYahoo, price, chart.Meta.PreviousClose)
	q.High = chart.Meta.DayHigh
	q.Low = chart.Meta.DayLow
	return q, nil
}

// metalFields accumulates price and previous close from whichever source
// answers first. Each field is filled at most once.
type metalFields struct {
	price     float64
	prevClose float64
	source    string
	failures  []error
}

func (f *metalFields) complete() bool {
	return market.Finite(f.price) && market.Finite(f.prevClose)
}

func (f *metalFields) fill(source string, price, prevClose float64) {
	if !market.Finite(f.price) && market.Finite(price) {
		f.price = price
		f.source = source
	}
	if !market.Finite(f.prevClose) && market.Finite(prevClose) {
		f.prevClose = prevClose
	}
}

func (f *metalFields) fail(err error) {
	if err != nil {
		f.failures = append(f.failures, err)
	}
}

func (s *Service) alphaVantageMetalQuote(ctx context.Context, metal market.Metal) (market.Quote, error) {
	fields := &metalFields{price: math.NaN(), prevClose: math.NaN()}

	var (
		rate     float64
		rateErr  error
		daily    []alphavantage.DailyClose
		dailyErr error
	)
	mr.FinishVoid(
		func() { rate, rateErr = s.alphavantage.ExchangeRate(ctx, metal.Symbol, metalQuoteCurrency) },
		func() { daily, dailyErr = s.alphavantage.DailyCloses(ctx, metal.Symbol, metalQuoteCurrency) },
	)
	fields.fail(rateErr)
	fields.fail(dailyErr)
	if rateErr == nil {
		fields.fill(market.ProviderAlphaVantage, rate, math.NaN())
	}
	if dailyErr == nil && len(daily) > 0 {
		prev := math.NaN()
		if len(daily) >= 2 {
			prev = daily[len(daily)-2].Close
		}
		fields.fill(market.ProviderAlphaVantage, daily[len(daily)-1].Close, prev)
	}

	if !fields.complete() && metal.HasSpotFeed {
		spot, err := s.alphavantage.MetalSpot(ctx, metal)
		fields.fail(err)
		if err == nil {
			fields.fill(market.ProviderAlphaVantage+"-spot", spot.Price, spot.PrevClose)
		}
	}

	if !market.Finite(fields.price) {
		return market.Quote{}, metalFailure(metal, fields.failures)
	}
	if len(fields.failures) > 0 {
		logx.WithContext(ctx).Infof("metals: %s resolved with partial data, failures=%d", metal.Symbol, len(fields.failures))
	}
	return market.NewQuote(metal.Symbol, fields.source, fields.price, fields.prevClose), nil
}

// metalFailure surfaces a missing credential or a quota notice when one
// caused the miss, and a plain not-found otherwise.
func metalFailure(metal market.Metal, failures []error) error {
	for _, kind := range []market.Kind{market.KindCredential, market.KindRateLimited} {
		for _, err := range failures {
			if market.IsKind(err, kind) {
				return err
			}
		}
	}
	var details any
	if n := len(failures); n > 0 {
		details = market.AsError(market.ProviderAlphaVantage, failures[n-1]).Details
	}
	return market.NotFoundError("No quote available for "+metal.Symbol, details)
}

// MetalCandles falls back from Yahoo to FX_DAILY to the metals history feed.
func (s *Service) MetalCandles(ctx context.Context, metal market.Metal, days int) (market.Series, error) {
	days = market.ClampDays(days)
	limit := days
	if limit < 2 {
		limit = 2
	}

	series, _, err := market.FirstSuccess(ctx,
		market.Strategy[market.Series]{Name: market.ProviderYahoo, Attempt: func(ctx context.Context) (market.Series, error) {
			chart, err := s.yahoo.Chart(ctx, metal.YahooTicker, yahoo.CandleRange(days), "1d")
			if err != nil {
				return market.Series{}, err
			}
			if chart.Series.Len() == 0 {
				return market.Series{}, market.NotFoundError("No yahoo candles for "+metal.Symbol, nil)
			}
			return chart.Series.Tail(limit), nil
		}},
		market.Strategy[market.Series]{Name: "alphavantage-daily", Attempt: func(ctx context.Context) (market.Series, error) {
			daily, err := s.alphavantage.DailyCloses(ctx, metal.Symbol, metalQuoteCurrency)
			if err != nil {
				return market.Series{}, err
			}
			rows := make([]market.Row, 0, len(daily))
			for _, d := range daily {
				rows = append(rows, market.ClosePoint(d.Time, d.Close))
			}
			series := market.NewSeries(rows)
			if series.Len() < 2 {
				return market.Series{}, market.NotFoundError("Not enough daily rows for "+metal.Symbol, nil)
			}
			return series.Tail(limit), nil
		}},
		market.Strategy[market.Series]{Name: "alphavantage-history", Attempt: func(ctx context.Context) (market.Series, error) {
			series, err := s.alphavantage.MetalHistory(ctx, metal, alphavantage.HistoryInterval(days))
			if err != nil {
				return market.Series{}, err
			}
			if series.Len() == 0 {
				return market.Series{}, market.NotFoundError("No candle data", nil)
			}
			return series.Tail(limit), nil
		}},
	)
	return series, err
}

// MetalQuoteResult is one entry of a concurrent catalog sweep.
type MetalQuoteResult struct {
	Metal market.Metal
	Quote market.Quote
	Err   error
}

// AllMetalQuotes quotes every catalog metal concurrently.
func (s *Service) AllMetalQuotes(ctx context.Context) []MetalQuoteResult {
	metals := market.Metals()
	results := make([]MetalQuoteResult, len(metals))
	fns := make([]func(), len(metals))
	for i, m := range metals {
		i, m := i, m
		fns[i] = func() {
			q, err := s.MetalQuote(ctx, m)
			results[i] = MetalQuoteResult{Metal: m, Quote: q, Err: err}
		}
	}
	mr.FinishVoid(fns...)
	return results
}

// MetalMovers ranks metals with a known percent change.
func (s *Service) MetalMovers(ctx context.Context) (Movers, error) {
	results := s.AllMetalQuotes(ctx)
	var rows []Mover
	for _, r := range results {
		if r.Err != nil || !r.Quote.HasPrice() || !market.Finite(r.Quote.PercentChange) {
			continue
		}
		rows = append(rows, Mover{
			Symbol:        r.Metal.Symbol,
			Name:          r.Metal.Name,
			Price:         r.Quote.Price,
			Change:        r.Quote.Change,
			PercentChange: r.Quote.PercentChange,
		})
	}
	if len(rows) == 0 {
		return Movers{}, sweepFailure(results, "Metals movers fetch failed")
	}
	gainers, losers := rankMovers(rows, func(m Mover) float64 { return m.PercentChange })
	return Movers{Gainers: gainers, Losers: losers, UniverseCount: len(rows)}, nil
}

// MetalOverview lists every metal with a price.
func (s *Service) MetalOverview(ctx context.Context) ([]OverviewRow, error) {
	results := s.AllMetalQuotes(ctx)
	var rows []OverviewRow
	for _, r := range results {
		if r.Err != nil || !r.Quote.HasPrice() {
			continue
		}
		rows = append(rows, OverviewRow{
			Symbol:  r.Metal.Symbol,
			Name:    r.Metal.Name,
			Price:   r.Quote.Price,
			Percent: r.Quote.PercentChange,
		})
	}
	if len(rows) == 0 {
		return nil, sweepFailure(results, "Metals overview fetch failed")
	}
	return rows, nil
}

func sweepFailure(results []MetalQuoteResult, msg string) error {
	for _, r := range results {
		if r.Err != nil {
			return withMessage(r.Err, msg)
		}
	}
	return market.UpstreamError("", http.StatusBadGateway, msg, nil)
}
