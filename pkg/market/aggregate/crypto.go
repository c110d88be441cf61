package aggregate

import (
	"context"
	"math"
	"strings"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/coingecko"
)

const (
	cryptoSearchLimit    = 10
	cryptoMoversUniverse = 80
)

var defaultCryptoIDs = []string{
	"bitcoin", "ethereum", "solana", "binancecoin", "ripple",
	"dogecoin", "cardano", "avalanche-2", "chainlink", "tron",
}

// CryptoQuote resolves a coin by id, or by ticker through search, and returns
// its USD market row.
func (s *Service) CryptoQuote(ctx context.Context, id, symbol string) (coingecko.MarketRow, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if id == "" && symbol != "" {
		resolved, err := s.resolveCoinID(ctx, symbol)
		if err != nil {
			return coingecko.MarketRow{}, err
		}
		id = resolved
	}
	if id == "" {
		return coingecko.MarketRow{}, market.InputError("Missing id or symbol")
	}

	rows, err := s.coingecko.Markets(ctx, coingecko.MarketsQuery{IDs: []string{id}})
	if err != nil {
		return coingecko.MarketRow{}, withMessage(err, "Crypto quote fetch failed")
	}
	if len(rows) == 0 {
		return coingecko.MarketRow{}, market.NotFoundError("Crypto not found", nil)
	}
	row := rows[0]
	row.Change = market.RoundChange(row.Change)
	row.PercentChange = market.RoundPercent(row.PercentChange)
	return row, nil
}

// resolveCoinID prefers an exact ticker match and falls back to the top hit.
func (s *Service) resolveCoinID(ctx context.Context, symbol string) (string, error) {
	coins, err := s.coingecko.Search(ctx, symbol)
	if err != nil {
		return "", err
	}
	for _, c := range coins {
		if strings.EqualFold(c.Symbol, symbol) && c.ID != "" {
			return c.ID, nil
		}
	}
	if len(coins) > 0 && coins[0].ID != "" {
		return coins[0].ID, nil
	}
	return "", market.NotFoundError("Crypto not found", nil)
}

// CryptoCandles returns USD closes and volumes for the window.
func (s *Service) CryptoCandles(ctx context.Context, id string, days int) (market.Series, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return market.Series{}, market.InputError("Missing id")
	}
	series, err := s.coingecko.MarketChart(ctx, id, market.ClampDays(days))
	if err != nil {
		return market.Series{}, err
	}
	if series.Len() == 0 {
		return market.Series{}, market.NotFoundError("No candle data", nil)
	}
	return series, nil
}

// CryptoSearch returns up to ten coins for query.
func (s *Service) CryptoSearch(ctx context.Context, query string) ([]coingecko.Coin, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, market.InputError("Missing query")
	}
	coins, err := s.coingecko.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(coins) > cryptoSearchLimit {
		coins = coins[:cryptoSearchLimit]
	}
	return coins, nil
}

// CryptoMovers ranks the largest coins by 24h change.
func (s *Service) CryptoMovers(ctx context.Context) (Movers, error) {
	rows, err := s.coingecko.Markets(ctx, coingecko.MarketsQuery{Order: "market_cap_desc", PerPage: cryptoMoversUniverse})
	if err != nil {
		return Movers{}, withMessage(err, "Crypto movers fetch failed")
	}
	var movers []Mover
	for _, r := range rows {
		if r.Symbol == "" || !market.Finite(r.Price) || !market.Finite(r.PercentChange) {
			continue
		}
		movers = append(movers, Mover{
			Symbol:        r.Symbol,
			Name:          r.Name,
			Price:         r.Price,
			Change:        market.RoundChange(r.Change),
			PercentChange: market.RoundPercent(r.PercentChange),
		})
	}
	gainers, losers := rankMovers(movers, func(m Mover) float64 { return m.PercentChange })
	return Movers{Gainers: gainers, Losers: losers, UniverseCount: len(movers)}, nil
}

// OverviewRow is one ticker-tape entry. Unknown numbers are NaN.
type OverviewRow struct {
	Symbol  string
	Name    string
	Price   float64
	Percent float64
}

// CryptoOverview returns rows for ids in request order, defaulting to majors.
func (s *Service) CryptoOverview(ctx context.Context, ids []string) ([]OverviewRow, error) {
	var wanted []string
	for _, id := range ids {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			wanted = append(wanted, id)
		}
	}
	if len(ids) == 0 {
		wanted = defaultCryptoIDs
	}
	if len(wanted) == 0 {
		return []OverviewRow{}, nil
	}

	rows, err := s.coingecko.Markets(ctx, coingecko.MarketsQuery{IDs: wanted})
	if err != nil {
		return nil, withMessage(err, "Crypto overview fetch failed")
	}
	byID := make(map[string]coingecko.MarketRow, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]OverviewRow, 0, len(wanted))
	for _, id := range wanted {
		r, ok := byID[id]
		if !ok {
			out = append(out, OverviewRow{Symbol: strings.ToUpper(id), Price: math.NaN(), Percent: math.NaN()})
			continue
		}
		symbol := r.Symbol
		if symbol == "" {
			symbol = strings.ToUpper(id)
		}
		out = append(out, OverviewRow{
			Symbol:  symbol,
			Name:    r.Name,
			Price:   r.Price,
			Percent: market.RoundPercent(r.PercentChange),
		})
	}
	return out, nil
}

// withMessage replaces the caller-facing message of a typed upstream error.
func withMessage(err error, msg string) error {
	me := market.AsError("", err)
	if me.Kind == market.KindUpstream || me.Kind == market.KindRateLimited {
		return me.WithMessage(msg)
	}
	return err
}
