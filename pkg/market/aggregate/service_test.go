package aggregate

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"marketdash-api/pkg/market/alphavantage"
	"marketdash-api/pkg/market/coingecko"
	"marketdash-api/pkg/market/finnhub"
	"marketdash-api/pkg/market/fxrates"
	"marketdash-api/pkg/market/stooq"
	"marketdash-api/pkg/market/yahoo"
)

type route func(r *http.Request) (int, string)

// upstream fakes every provider on one server, each under its own prefix.
type upstream struct {
	server *httptest.Server

	mu     sync.Mutex
	routes map[string]route
	hits   map[string]int
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{routes: map[string]route{}, hits: map[string]int{}}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.hits[r.URL.Path]++
		h, ok := u.routes[r.URL.Path]
		u.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
			return
		}
		status, body := h(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) handle(path string, h route) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.routes[path] = h
}

func (u *upstream) reply(path string, status int, body string) {
	u.handle(path, func(*http.Request) (int, string) { return status, body })
}

func (u *upstream) count(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

func (u *upstream) total() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, c := range u.hits {
		n += c
	}
	return n
}

type serviceOpts struct {
	avKey      string
	finnhubKey string
	opts       []Option
}

func newTestService(t *testing.T, u *upstream, o serviceOpts) *Service {
	t.Helper()
	base := u.server.URL
	return NewService(Providers{
		Finnhub:   finnhub.NewClient(finnhub.WithBaseURL(base+"/finnhub"), finnhub.WithAPIKey(o.finnhubKey, "FINNHUB_API_KEY")),
		CoinGecko: coingecko.NewClient(coingecko.WithBaseURL(base + "/gecko")),
		AlphaVantage: alphavantage.NewClient(
			alphavantage.WithBaseURL(base+"/av"),
			alphavantage.WithAPIKey(o.avKey, "ALPHAVANTAGE_API_KEY"),
		),
		Yahoo: yahoo.NewClient(yahoo.WithBaseURL(base + "/yahoo")),
		FX: fxrates.NewClient(
			fxrates.WithFrankfurterURL(base+"/frankfurter"),
			fxrates.WithOpenERURL(base+"/oer"),
		),
		Stooq: stooq.NewClient(stooq.WithBaseURL(base + "/stooq")),
	}, o.opts...)
}

func yahooChart(price, prevClose float64) string {
	return fmt.Sprintf(`{"chart": {"result": [{
		"meta": {"currency": "USD", "regularMarketPrice": %v, "previousClose": %v},
		"timestamp": [1709078400, 1709164800],
		"indicators": {"quote": [{"close": [%v, %v], "volume": [10, 12]}]}
	}], "error": null}}`, price, prevClose, prevClose, price)
}

func TestRankMovers(t *testing.T) {
	type row struct {
		name string
		pct  float64
	}
	rows := []row{{"a", 1}, {"b", 5}, {"c", -3}, {"d", 5}, {"e", 0}, {"f", 2}, {"g", -1}}

	gainers, losers := rankMovers(rows, func(r row) float64 { return r.pct })

	names := func(rs []row) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.name
		}
		return out
	}
	assert.Equal(t, []string{"b", "d", "f", "a", "e"}, names(gainers))
	assert.Equal(t, []string{"c", "g", "e", "a", "f"}, names(losers))
}

func TestRankMoversShortList(t *testing.T) {
	gainers, losers := rankMovers([]float64{1, -1}, func(f float64) float64 { return f })
	assert.Equal(t, []float64{1, -1}, gainers)
	assert.Equal(t, []float64{-1, 1}, losers)
}
