package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdash-api/internal/config"
	"marketdash-api/pkg/market"
)

func TestConfigSummaryLinesNil(t *testing.T) {
	assert.Equal(t, []string{"Configuration: <nil>"}, ConfigSummaryLines(nil))
}

func TestConfigSummaryLines(t *testing.T) {
	for _, key := range []string{"FINNHUB_API_KEY", "ALPHAVANTAGE_API_KEY", "CRYPTO_API_KEY_2", "COINGECKO_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}
	providers, err := market.LoadConfigFromReader(strings.NewReader(`
providers:
  finnhub:
    api_key: secret-token
`))
	require.NoError(t, err)

	cfg := &config.Config{
		Env:   "dev",
		Cache: config.CacheConf{MaxEntries: 100, Retention: 3600, AlphaVantage: 65, CoinGecko: 20, CoinGeckoSearch: 12, Yahoo: 60},
	}
	cfg.Providers.Value = providers
	cfg.LLM.File = "llm.yaml"

	lines := ConfigSummaryLines(cfg)
	joined := strings.Join(lines, "\n")

	assert.Contains(t, joined, "Environment: dev")
	assert.Contains(t, joined, "Redis: not configured")
	assert.Contains(t, joined, "Cache (entries/retention): 100 / 3600s")
	assert.Contains(t, joined, "65s / 20s / 12s / 60s")
	assert.Contains(t, joined, "Providers config: inline")
	assert.Contains(t, joined, "LLM config: llm.yaml")
	assert.Contains(t, joined, "finnhub key: configured")
	assert.Contains(t, joined, "coingecko key: not configured")
	assert.Contains(t, joined, "LLM key: not configured")
	assert.NotContains(t, joined, "secret-token")
}

func TestConfigSummaryRedis(t *testing.T) {
	cfg := &config.Config{Env: "prod"}
	cfg.Redis.Host = "127.0.0.1:6379"

	assert.Contains(t, ConfigSummaryLines(cfg), "Redis: configured")
}
