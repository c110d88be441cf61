package aggregate

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/mr"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/finnhub"
)

// Price sources reported on stock quotes.
const (
	PriceSourceLive          = "live"
	PriceSourcePreviousClose = "previousClose"
)

var moversUniverse = []string{
	"AAPL", "MSFT", "NVDA", "AMZN", "GOOGL", "META", "TSLA", "AMD", "NFLX", "AVGO", "JPM", "XOM",
}

var candleResolutions = map[string]bool{
	"1": true, "5": true, "15": true, "30": true, "60": true, "D": true, "W": true, "M": true,
}

// StockQuote is a quote plus the field the price was taken from.
type StockQuote struct {
	market.Quote
	PriceSource string
}

// StockQuote resolves a live quote, degrading to the previous close when the
// session has no live price yet.
func (s *Service) StockQuote(ctx context.Context, symbol string) (StockQuote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return StockQuote{}, market.InputError("Symbol required")
	}
	raw, err := s.finnhub.Quote(ctx, symbol)
	if err != nil {
		return StockQuote{}, err
	}

	prev := raw.PrevClose
	if !market.Positive(prev) {
		prev = math.NaN()
	}
	var out StockQuote
	switch {
	case market.Positive(raw.Current):
		out.Quote = market.NewQuote(symbol, market.ProviderFinnhub, raw.Current, prev)
		out.PriceSource = PriceSourceLive
	case market.Finite(prev):
		// No session price yet: show the last close without inventing a change.
		out.Quote = market.NewQuote(symbol, market.ProviderFinnhub, prev, math.NaN())
		out.PrevClose = prev
		out.PriceSource = PriceSourcePreviousClose
	default:
		return StockQuote{}, market.NotFoundError("No quote available for "+symbol, nil)
	}
	out.High = raw.High
	out.Low = raw.Low
	out.Open = raw.Open
	return out, nil
}

// StockCandles returns candles for the trailing window of days.
func (s *Service) StockCandles(ctx context.Context, symbol, resolution string, days int) (market.Series, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return market.Series{}, market.InputError("Missing symbol")
	}
	resolution = strings.ToUpper(strings.TrimSpace(resolution))
	if resolution == "" {
		resolution = "D"
	}
	if !candleResolutions[resolution] {
		return market.Series{}, market.InputError("Invalid resolution")
	}
	days = market.ClampDays(days)

	to := s.now().Unix()
	from := to - int64(days)*int64(24*time.Hour/time.Second)
	series, err := s.finnhub.Candles(ctx, symbol, resolution, from, to)
	if err != nil {
		return market.Series{}, err
	}
	if series.Len() == 0 {
		return market.Series{}, market.NotFoundError("No candle data", nil)
	}
	return series, nil
}

// Mover is one row of a movers board.
type Mover struct {
	Symbol        string
	Name          string
	Price         float64
	Change        float64
	PercentChange float64
}

// Movers is a ranked board.
type Movers struct {
	Gainers       []Mover
	Losers        []Mover
	UniverseCount int
}

// StockMovers quotes the fixed universe concurrently and ranks by percent change.
func (s *Service) StockMovers(ctx context.Context) (Movers, error) {
	quotes := make([]finnhub.RawQuote, len(moversUniverse))
	errs := make([]error, len(moversUniverse))
	fns := make([]func(), len(moversUniverse))
	for i, symbol := range moversUniverse {
		i, symbol := i, symbol
		fns[i] = func() { quotes[i], errs[i] = s.finnhub.Quote(ctx, symbol) }
	}
	mr.FinishVoid(fns...)

	var rows []Mover
	var firstErr error
	for i, symbol := range moversUniverse {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		q := quotes[i]
		if !market.Finite(q.Current) || !market.Finite(q.PercentChange) {
			continue
		}
		rows = append(rows, Mover{
			Symbol:        symbol,
			Price:         q.Current,
			Change:        market.RoundChange(q.Change),
			PercentChange: market.RoundPercent(q.PercentChange),
		})
	}
	if len(rows) == 0 && firstErr != nil {
		return Movers{}, firstErr
	}
	gainers, losers := rankMovers(rows, func(m Mover) float64 { return m.PercentChange })
	return Movers{Gainers: gainers, Losers: losers, UniverseCount: len(rows)}, nil
}

// StockMetrics returns fundamentals for symbol.
func (s *Service) StockMetrics(ctx context.Context, symbol string) (finnhub.Metrics, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return finnhub.Metrics{}, market.InputError("Missing symbol")
	}
	return s.finnhub.Metric(ctx, symbol)
}

// StockProfile returns the company profile for symbol.
func (s *Service) StockProfile(ctx context.Context, symbol string) (finnhub.Profile, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return finnhub.Profile{}, market.InputError("Missing symbol")
	}
	p, err := s.finnhub.Profile(ctx, symbol)
	if err != nil {
		return finnhub.Profile{}, err
	}
	if p.Ticker == "" {
		p.Ticker = symbol
	}
	return p, nil
}
