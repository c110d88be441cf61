package market_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	market "marketdash-api/pkg/market"
)

func TestLoadProvidersConfig(t *testing.T) {
	dir := t.TempDir()
	configYAML := `
user_agent: marketdash-test
providers:
  finnhub:
    base_url: https://finnhub.test/api/v1/
    api_key: fh-key
    timeout: 6s
  yahoo:
    timeout: 12s
`
	path := filepath.Join(dir, "providers.yaml")
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := market.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.UserAgent != "marketdash-test" {
		t.Fatalf("unexpected user agent: %s", cfg.UserAgent)
	}
	fh := cfg.Provider(market.ProviderFinnhub)
	if fh.BaseURL != "https://finnhub.test/api/v1" {
		t.Fatalf("base url not trimmed: %q", fh.BaseURL)
	}
	if fh.APIKey != "fh-key" || fh.Timeout != 6*time.Second {
		t.Fatalf("unexpected finnhub config: %+v", fh)
	}
	if got := cfg.Provider(market.ProviderYahoo).Timeout; got != 12*time.Second {
		t.Fatalf("yahoo timeout = %s", got)
	}
	cg := cfg.Provider(market.ProviderCoinGecko)
	if cg.BaseURL != "https://api.coingecko.com/api/v3" {
		t.Fatalf("coingecko default base url missing: %q", cg.BaseURL)
	}
	if cg.Timeout != 8*time.Second {
		t.Fatalf("default timeout = %s", cg.Timeout)
	}
}

func TestProvidersConfigUnknownProvider(t *testing.T) {
	_, err := market.LoadConfigFromReader(strings.NewReader(`
providers:
  bloomberg:
    base_url: https://example.test
`))
	if err == nil || !strings.Contains(err.Error(), "unsupported provider") {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}

func TestProvidersConfigEnvExpansionAndFallbackKeys(t *testing.T) {
	t.Setenv("FH_URL", "https://finnhub.env/api/v1")
	t.Setenv("FH_TIMEOUT", "9s")
	t.Setenv("ALPHAVANTAGE_API_KEY", "")
	t.Setenv("CRYPTO_API_KEY_2", "shared-key")

	cfg, err := market.LoadConfigFromReader(strings.NewReader(`
providers:
  finnhub:
    base_url: ${FH_URL}
    timeout: ${FH_TIMEOUT}
`))
	if err != nil {
		t.Fatalf("LoadConfigFromReader: %v", err)
	}
	fh := cfg.Provider(market.ProviderFinnhub)
	if fh.BaseURL != "https://finnhub.env/api/v1" || fh.Timeout != 9*time.Second {
		t.Fatalf("env not expanded: %+v", fh)
	}
	av := cfg.Provider(market.ProviderAlphaVantage)
	if av.APIKey != "shared-key" || av.KeyEnv != "CRYPTO_API_KEY_2" {
		t.Fatalf("fallback key not applied: %+v", av)
	}
}

func TestProvidersConfigInvalidTimeout(t *testing.T) {
	_, err := market.LoadConfigFromReader(strings.NewReader(`
providers:
  coingecko:
    timeout: soon
`))
	if err == nil || !strings.Contains(err.Error(), "invalid timeout") {
		t.Fatalf("expected invalid timeout error, got %v", err)
	}
}
