package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/cache"
)

type mockAV struct {
	server *httptest.Server
	calls  atomic.Int32
}

func newMockAV(t *testing.T, handler func(q url.Values) (int, string)) *mockAV {
	t.Helper()
	m := &mockAV{}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.calls.Add(1)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		status, body := handler(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(m.server.Close)
	return m
}

func newTestClient(t *testing.T, baseURL string, opts ...cache.LoaderOption) *Client {
	t.Helper()
	mem, err := cache.NewMemory(32, time.Hour)
	require.NoError(t, err)
	return NewClient(
		WithBaseURL(baseURL),
		WithAPIKey("test-key", "ALPHAVANTAGE_API_KEY"),
		WithLoader(cache.NewLoader(mem, opts...)),
	)
}

func rateParams() url.Values {
	params := url.Values{}
	params.Set("function", "CURRENCY_EXCHANGE_RATE")
	params.Set("from_currency", "XAU")
	params.Set("to_currency", "USD")
	return params
}

func TestQueryMissingKeyMakesNoCall(t *testing.T) {
	mock := newMockAV(t, func(url.Values) (int, string) { return http.StatusOK, `{}` })
	client := NewClient(WithBaseURL(mock.server.URL))

	_, err := client.Query(context.Background(), rateParams())
	require.Error(t, err)
	assert.True(t, market.IsKind(err, market.KindCredential))
	assert.Contains(t, err.Error(), "ALPHAVANTAGE_API_KEY")
	assert.EqualValues(t, 0, mock.calls.Load())
}

func TestQueryCachesSuccessWithinTTL(t *testing.T) {
	mock := newMockAV(t, func(url.Values) (int, string) {
		return http.StatusOK, `{"Realtime Currency Exchange Rate": {"5. Exchange Rate": "2034.1000"}}`
	})
	client := newTestClient(t, mock.server.URL)

	for i := 0; i < 3; i++ {
		rate, err := client.ExchangeRate(context.Background(), "XAU", "USD")
		require.NoError(t, err)
		assert.InDelta(t, 2034.1, rate, 1e-9)
	}
	assert.EqualValues(t, 1, mock.calls.Load())
}

func TestQueryRateLimitNotice(t *testing.T) {
	mock := newMockAV(t, func(url.Values) (int, string) {
		return http.StatusOK, `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`
	})
	client := newTestClient(t, mock.server.URL)

	env, err := client.Query(context.Background(), rateParams())
	require.NoError(t, err)
	assert.False(t, env.OK)
	assert.Equal(t, http.StatusTooManyRequests, env.Status)
	assert.Equal(t, "Alpha Vantage rate limit", env.Result().Get("error").String())

	_, err = client.ExchangeRate(context.Background(), "XAU", "USD")
	require.Error(t, err)
	assert.True(t, market.IsKind(err, market.KindRateLimited))
	assert.EqualValues(t, 2, mock.calls.Load(), "rate-limit notices must not be cached")
}

func TestQueryServesStaleOnRateLimit(t *testing.T) {
	var limited atomic.Bool
	mock := newMockAV(t, func(url.Values) (int, string) {
		if limited.Load() {
			return http.StatusOK, `{"Information": "rate limited"}`
		}
		return http.StatusOK, `{"Realtime Currency Exchange Rate": {"5. Exchange Rate": "25.5"}}`
	})
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	client := newTestClient(t, mock.server.URL, cache.WithClock(func() time.Time { return now }))

	rate, err := client.ExchangeRate(context.Background(), "XAG", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 25.5, rate, 1e-9)

	limited.Store(true)
	now = now.Add(5 * time.Minute)
	rate, err = client.ExchangeRate(context.Background(), "XAG", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 25.5, rate, 1e-9)
	assert.EqualValues(t, 2, mock.calls.Load())
}

func TestQueryErrorMessageIsCached(t *testing.T) {
	mock := newMockAV(t, func(url.Values) (int, string) {
		return http.StatusOK, `{"Error Message": "Invalid API call."}`
	})
	client := newTestClient(t, mock.server.URL)

	for i := 0; i < 2; i++ {
		env, err := client.Query(context.Background(), rateParams())
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, env.Status)
		assert.Equal(t, "Invalid API call.", env.Result().Get("details").String())
	}
	assert.EqualValues(t, 1, mock.calls.Load())
}

func TestQueryNonOKKeepsUpstreamStatus(t *testing.T) {
	mock := newMockAV(t, func(url.Values) (int, string) { return http.StatusServiceUnavailable, `oops` })
	client := newTestClient(t, mock.server.URL)

	env, err := client.Query(context.Background(), rateParams())
	require.NoError(t, err)
	assert.False(t, env.OK)
	assert.Equal(t, http.StatusServiceUnavailable, env.Status)
	assert.JSONEq(t, `{}`, string(env.Data))
}

func TestQueryMetalFallsBackToISOCode(t *testing.T) {
	var symbols []string
	mock := newMockAV(t, func(q url.Values) (int, string) {
		symbols = append(symbols, q.Get("symbol"))
		if q.Get("symbol") == "GOLD" {
			return http.StatusOK, `{"Error Message": "unknown symbol"}`
		}
		return http.StatusOK, `{"price": "2050.5", "previous_close": "2040"}`
	})
	client := newTestClient(t, mock.server.URL)
	gold, _ := market.LookupMetal("XAU")

	spot, err := client.MetalSpot(context.Background(), gold)
	require.NoError(t, err)
	assert.InDelta(t, 2050.5, spot.Price, 1e-9)
	assert.InDelta(t, 2040, spot.PrevClose, 1e-9)
	assert.Equal(t, []string{"GOLD", "XAU"}, symbols)
}

func TestParseDailyCloses(t *testing.T) {
	root := gjson.Parse(`{"Time Series FX (Daily)": {
		"2024-03-01": {"4. close": "2080.1"},
		"2024-02-28": {"4. close": "2030.0"},
		"2024-02-29": {"4. close": "2045.5"}
	}}`)

	rows := ParseDailyCloses(root)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-02-28", rows[0].Date)
	assert.Equal(t, "2024-03-01", rows[2].Date)
	assert.InDelta(t, 2045.5, rows[1].Close, 1e-9)
	assert.Equal(t, float64(1709251200), rows[2].Time)

	assert.Empty(t, ParseDailyCloses(gjson.Parse(`{}`)))
}

func TestParseSpotFieldVariants(t *testing.T) {
	spot := ParseSpot(gjson.Parse(`{"Spot Price": "24.1", "Previous Close": 23.9}`))
	assert.InDelta(t, 24.1, spot.Price, 1e-9)
	assert.InDelta(t, 23.9, spot.PrevClose, 1e-9)

	spot = ParseSpot(gjson.Parse(`{"spot_price": 1, "close": 2}`))
	assert.InDelta(t, 1, spot.Price, 1e-9)
	assert.InDelta(t, 2, spot.PrevClose, 1e-9)
}

func TestParseHistory(t *testing.T) {
	series := ParseHistory(gjson.Parse(`{"data": [
		{"date": "2024-02-02", "price": "2040"},
		{"date": "2024-02-01", "close": 2030},
		{"timestamp": 1707004800, "value": "2050"},
		{"date": "bad", "price": 1},
		{"date": "2024-02-05"}
	]}`))

	assert.Equal(t, []float64{2030, 2040, 2050}, series.Closes())
	assert.Equal(t, []int64{1706745600, 1706832000, 1707004800}, series.Times())
}

func TestHistoryInterval(t *testing.T) {
	assert.Equal(t, "daily", HistoryInterval(7))
	assert.Equal(t, "weekly", HistoryInterval(30))
	assert.Equal(t, "monthly", HistoryInterval(90))
}
