package svc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdash-api/internal/config"
	"marketdash-api/internal/svc"
	"marketdash-api/pkg/llm"
	"marketdash-api/pkg/market"
	marketcache "marketdash-api/pkg/market/cache"
)

type stubChat struct{}

func (stubChat) Chat(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Content: `{"ticker":"AAPL"}`}, nil
}

func (stubChat) Model() string { return "stub-model" }

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	for _, env := range []string{
		"FINNHUB_API_KEY", "ALPHAVANTAGE_API_KEY", "CRYPTO_API_KEY_2", "COINGECKO_API_KEY",
		"OPENAI_API_KEY", "OPENROUTER_API_KEY", "LLM_MODEL", "LLM_BASE_URL",
	} {
		t.Setenv(env, "")
	}
	return config.Config{
		Cache: config.CacheConf{MaxEntries: 16, Retention: 60, AlphaVantage: 65, CoinGecko: 20, CoinGeckoSearch: 12, Yahoo: 60},
	}
}

func TestBuildWithoutCredentials(t *testing.T) {
	sc, err := svc.Build(baseConfig(t))
	require.NoError(t, err)

	assert.NotNil(t, sc.Market)
	assert.NotNil(t, sc.Loader)
	assert.Nil(t, sc.Analyst)
	assert.Equal(t, svc.Credentials{}, sc.Credentials)
	_, ok := sc.Cache.(*marketcache.Memory)
	assert.True(t, ok)
}

func TestBuildReadsCredentials(t *testing.T) {
	cfg := baseConfig(t)
	t.Setenv("FINNHUB_API_KEY", "fh")
	t.Setenv("CRYPTO_API_KEY_2", "shared")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	sc, err := svc.Build(cfg)
	require.NoError(t, err)

	assert.True(t, sc.Credentials.Finnhub)
	assert.True(t, sc.Credentials.AlphaVantage)
	assert.True(t, sc.Credentials.CoinGecko)
	assert.True(t, sc.Credentials.OpenRouter)
	assert.False(t, sc.Credentials.OpenAI)
	assert.True(t, sc.Credentials.LLM)
	require.NotNil(t, sc.Analyst)
	assert.Equal(t, "mistralai/mistral-7b-instruct", sc.Analyst.Model())
	assert.Equal(t, "CRYPTO_API_KEY_2", sc.MarketConfig.Provider(market.ProviderAlphaVantage).KeyEnv)
}

func TestBuildWithChatter(t *testing.T) {
	sc, err := svc.Build(baseConfig(t), svc.WithChatter(stubChat{}))
	require.NoError(t, err)
	require.NotNil(t, sc.Analyst)
	assert.Equal(t, "stub-model", sc.Analyst.Model())
	assert.True(t, sc.Credentials.LLM)
}

func TestBuildRejectsMissingPromptFile(t *testing.T) {
	cfg := baseConfig(t)
	llmCfg := llm.DefaultConfig()
	llmCfg.PromptFile = "/nonexistent/analysis.tmpl"
	cfg.LLM.Value = llmCfg

	_, err := svc.Build(cfg, svc.WithChatter(stubChat{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis prompt")
}
