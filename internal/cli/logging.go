package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/internal/config"
	"marketdash-api/pkg/confkit"
	"marketdash-api/pkg/market"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
// Credentials are reported by presence only.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Listen: %s:%d", cfg.Host, cfg.Port),
		fmt.Sprintf("Redis: %s", presence(cfg.HasRedis())),
		fmt.Sprintf("Cache (entries/retention): %d / %ds", cfg.Cache.MaxEntries, cfg.Cache.Retention),
		fmt.Sprintf("Cache TTL (alphavantage/coingecko/search/yahoo): %ds / %ds / %ds / %ds",
			cfg.Cache.AlphaVantage, cfg.Cache.CoinGecko, cfg.Cache.CoinGeckoSearch, cfg.Cache.Yahoo),
		sectionLine("Providers config", cfg.Providers),
		sectionLine("LLM config", cfg.LLM),
	}

	providers := cfg.ProvidersConfig()
	for _, name := range []string{market.ProviderFinnhub, market.ProviderAlphaVantage, market.ProviderCoinGecko} {
		lines = append(lines, fmt.Sprintf("%s key: %s", name, presence(providers.HasKey(name))))
	}
	lines = append(lines, fmt.Sprintf("LLM key: %s", presence(cfg.LLMConfig().HasKey())))

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: defaults", name)
	}
}
