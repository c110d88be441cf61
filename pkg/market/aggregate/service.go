package aggregate

import (
	"sort"
	"time"

	"marketdash-api/pkg/market/alphavantage"
	"marketdash-api/pkg/market/coingecko"
	"marketdash-api/pkg/market/finnhub"
	"marketdash-api/pkg/market/fxrates"
	"marketdash-api/pkg/market/stooq"
	"marketdash-api/pkg/market/yahoo"
)

const moversLimit = 5

// Providers groups the upstream clients the orchestrators fall back across.
type Providers struct {
	Finnhub      *finnhub.Client
	CoinGecko    *coingecko.Client
	AlphaVantage *alphavantage.Client
	Yahoo        *yahoo.Client
	FX           *fxrates.Client
	Stooq        *stooq.Client
}

// Service resolves quotes, candles and lookups across providers.
type Service struct {
	finnhub      *finnhub.Client
	coingecko    *coingecko.Client
	alphavantage *alphavantage.Client
	yahoo        *yahoo.Client
	fx           *fxrates.Client
	stooq        *stooq.Client
	now          func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source used for candle windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds a Service. Missing providers get default clients.
func NewService(p Providers, opts ...Option) *Service {
	s := &Service{
		finnhub:      p.Finnhub,
		coingecko:    p.CoinGecko,
		alphavantage: p.AlphaVantage,
		yahoo:        p.Yahoo,
		fx:           p.FX,
		stooq:        p.Stooq,
		now:          time.Now,
	}
	if s.finnhub == nil {
		s.finnhub = finnhub.NewClient()
	}
	if s.coingecko == nil {
		s.coingecko = coingecko.NewClient()
	}
	if s.alphavantage == nil {
		s.alphavantage = alphavantage.NewClient()
	}
	if s.yahoo == nil {
		s.yahoo = yahoo.NewClient()
	}
	if s.fx == nil {
		s.fx = fxrates.NewClient()
	}
	if s.stooq == nil {
		s.stooq = stooq.NewClient()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// rankMovers orders rows by percent change and returns the top and bottom
// moversLimit rows. Ties keep input order.
func rankMovers[T any](rows []T, percent func(T) float64) (gainers, losers []T) {
	sorted := make([]T, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return percent(sorted[i]) > percent(sorted[j]) })

	n := moversLimit
	if n > len(sorted) {
		n = len(sorted)
	}
	gainers = append([]T(nil), sorted[:n]...)
	losers = make([]T, 0, n)
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		losers = append(losers, sorted[i])
	}
	return gainers, losers
}
