package aggregate

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdash-api/pkg/market"
	"marketdash-api/pkg/market/finnhub"
)

func TestSearchSymbolApple(t *testing.T) {
	u := newUpstream(t)
	u.handle("/finnhub/search", func(r *http.Request) (int, string) {
		assert.Equal(t, "apple", r.URL.Query().Get("q"))
		return http.StatusOK, `{"count": 4, "result": [
			{"description": "APPLE HOSPITALITY REIT INC", "displaySymbol": "APLE", "symbol": "APLE", "type": "Common Stock"},
			{"description": "APPLE INC", "displaySymbol": "AAPL.MX", "symbol": "AAPL.MX", "type": "Common Stock"},
			{"description": "APPLE INC", "displaySymbol": "AAPL", "symbol": "AAPL", "type": "Common Stock"},
			{"description": "APPLE INC", "displaySymbol": "APC.F", "symbol": "APC.F", "type": "Common Stock"}
		]}`
	})
	svc := newTestService(t, u, serviceOpts{finnhubKey: "test-token"})

	res, err := svc.SearchSymbol(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Symbol)
	assert.Equal(t, "AAPL", res.Best.Symbol)
	assert.Len(t, res.Matches, 4)
	assert.Equal(t, "APC.F", res.Matches[3].Symbol)
}

func TestRankCandidatesToyotaRegardlessOfOrder(t *testing.T) {
	candidates := []finnhub.Candidate{
		{Symbol: "7203.T", DisplaySymbol: "7203.T", Description: "TOYOTA MOTOR CORP", Type: "Common Stock"},
		{Symbol: "TOYOF", DisplaySymbol: "TOYOF", Description: "TOYOTA MOTOR CORP", Type: "Common Stock"},
		{Symbol: "TM", DisplaySymbol: "TM", Description: "TOYOTA MOTOR CORP-SPON ADR", Type: "ADR"},
	}
	ranked := RankCandidates("Toyota", candidates)
	require.NotEmpty(t, ranked)
	assert.Equal(t, "TM", ranked[0].Symbol)

	reversed := []finnhub.Candidate{candidates[2], candidates[1], candidates[0]}
	assert.Equal(t, "TM", RankCandidates("toyota", reversed)[0].Symbol)
}

func TestRankCandidatesInjectsAlias(t *testing.T) {
	ranked := RankCandidates(" TOYOTA ", []finnhub.Candidate{
		{Symbol: "7203.T", DisplaySymbol: "7203.T", Description: "TOYOTA MOTOR CORP", Type: "Common Stock"},
	})
	require.Len(t, ranked, 2)
	assert.Equal(t, "TM", ranked[0].Symbol)
	assert.Equal(t, "7203.T", ranked[1].Symbol)
}

func TestScoreCandidatePenalties(t *testing.T) {
	plain := finnhub.Candidate{Symbol: "SHOP", Description: "SHOPIFY INC", Type: "Common Stock"}
	foreign := finnhub.Candidate{Symbol: "SHOP.TO", Description: "SHOPIFY INC", Type: "Common Stock"}
	colon := finnhub.Candidate{Symbol: "NYSE:SHOP", Description: "SHOPIFY INC", Type: "Common Stock"}

	assert.Greater(t, ScoreCandidate("shopify", plain), ScoreCandidate("shopify", foreign))
	assert.Greater(t, ScoreCandidate("shopify", plain), ScoreCandidate("shopify", colon))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "apple", normalizeName("Apple Inc."))
	assert.Equal(t, "toyota motor", normalizeName("TOYOTA MOTOR CORP"))
	assert.Equal(t, "", normalizeName("  "))
}

func TestSearchSymbolErrors(t *testing.T) {
	u := newUpstream(t)
	u.reply("/finnhub/search", http.StatusOK, `{"count": 0, "result": []}`)
	svc := newTestService(t, u, serviceOpts{finnhubKey: "test-token"})

	_, err := svc.SearchSymbol(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, market.AsError("", err).Status)

	_, err = svc.SearchSymbol(context.Background(), "qqqqqq")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, market.AsError("", err).Status)
}
