package svc

import (
	"fmt"
	"os"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"marketdash-api/internal/cache"
	"marketdash-api/internal/config"
	llmpkg "marketdash-api/pkg/llm"
	marketpkg "marketdash-api/pkg/market"
	"marketdash-api/pkg/market/aggregate"
	"marketdash-api/pkg/market/alphavantage"
	marketcache "marketdash-api/pkg/market/cache"
	"marketdash-api/pkg/market/coingecko"
	"marketdash-api/pkg/market/finnhub"
	"marketdash-api/pkg/market/fxrates"
	"marketdash-api/pkg/market/stooq"
	"marketdash-api/pkg/market/transport"
	"marketdash-api/pkg/market/yahoo"
)

// Credentials reports which upstream keys are configured. Values are never exposed.
type Credentials struct {
	Finnhub      bool
	AlphaVantage bool
	CoinGecko    bool
	OpenAI       bool
	OpenRouter   bool
	LLM          bool
}

type ServiceContext struct {
	Config config.Config

	MarketConfig *marketpkg.Config
	LLMConfig    *llmpkg.Config
	TTL          cache.TTLSet

	Cache  marketcache.Cache
	Loader *marketcache.Loader
	Market *aggregate.Service

	// Analyst is nil when no LLM credential is configured.
	Analyst *llmpkg.Analyst

	Credentials Credentials
}

// Option customises a ServiceContext before clients are built.
type Option func(*options)

type options struct {
	serviceOpts []aggregate.Option
	chat        llmpkg.Chatter
}

// WithServiceOptions forwards options to the aggregate service.
func WithServiceOptions(opts ...aggregate.Option) Option {
	return func(o *options) { o.serviceOpts = append(o.serviceOpts, opts...) }
}

// WithChatter replaces the LLM client, regardless of credentials.
func WithChatter(chat llmpkg.Chatter) Option {
	return func(o *options) { o.chat = chat }
}

func NewServiceContext(c config.Config, opts ...Option) *ServiceContext {
	svc, err := Build(c, opts...)
	logx.Must(err)
	return svc
}

// Build wires the cache, provider clients and LLM analyst from c.
func Build(c config.Config, opts ...Option) (*ServiceContext, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	svc := &ServiceContext{
		Config:       c,
		MarketConfig: c.ProvidersConfig(),
		LLMConfig:    c.LLMConfig(),
		TTL:          cache.NewTTLSet(c.Cache),
	}

	store, err := cache.NewStore(c)
	if err != nil {
		return nil, fmt.Errorf("init response cache: %w", err)
	}
	svc.Cache = store
	svc.Loader = marketcache.NewLoader(store)
	svc.Market = aggregate.NewService(svc.providers(), o.serviceOpts...)

	chat := o.chat
	if chat == nil && svc.LLMConfig.HasKey() {
		client, err := llmpkg.NewClient(svc.LLMConfig, llmpkg.WithLogger(llmpkg.NewLogger(svc.LLMConfig.LogLevel)))
		if err != nil {
			return nil, fmt.Errorf("init llm client: %w", err)
		}
		chat = client
	}
	if chat != nil {
		tmpl, err := analysisTemplate(svc.LLMConfig)
		if err != nil {
			return nil, err
		}
		svc.Analyst = llmpkg.NewAnalyst(chat, tmpl)
	} else {
		logx.Info("llm: no credential configured, /api/ai is disabled")
	}

	svc.Credentials = Credentials{
		Finnhub:      svc.MarketConfig.HasKey(marketpkg.ProviderFinnhub),
		AlphaVantage: svc.MarketConfig.HasKey(marketpkg.ProviderAlphaVantage),
		CoinGecko:    svc.MarketConfig.HasKey(marketpkg.ProviderCoinGecko),
		OpenAI:       envSet("OPENAI_API_KEY"),
		OpenRouter:   envSet("OPENROUTER_API_KEY"),
		LLM:          svc.Analyst != nil,
	}
	return svc, nil
}

func (s *ServiceContext) providers() aggregate.Providers {
	cfg := s.MarketConfig
	httpFor := func(name string) *transport.Client {
		return transport.New(
			transport.WithTimeout(cfg.Provider(name).Timeout),
			transport.WithUserAgent(cfg.UserAgent),
		)
	}

	fh := cfg.Provider(marketpkg.ProviderFinnhub)
	av := cfg.Provider(marketpkg.ProviderAlphaVantage)
	cg := cfg.Provider(marketpkg.ProviderCoinGecko)

	return aggregate.Providers{
		Finnhub: finnhub.NewClient(
			finnhub.WithBaseURL(fh.BaseURL),
			finnhub.WithAPIKey(fh.APIKey, fh.KeyEnv),
			finnhub.WithTransport(httpFor(marketpkg.ProviderFinnhub)),
		),
		AlphaVantage: alphavantage.NewClient(
			alphavantage.WithBaseURL(av.BaseURL),
			alphavantage.WithAPIKey(av.APIKey, av.KeyEnv),
			alphavantage.WithTransport(httpFor(marketpkg.ProviderAlphaVantage)),
			alphavantage.WithLoader(s.Loader),
			alphavantage.WithTTL(s.TTL.Duration(cache.TTLAlphaVantage)),
		),
		CoinGecko: coingecko.NewClient(
			coingecko.WithBaseURL(cg.BaseURL),
			coingecko.WithAPIKey(cg.APIKey),
			coingecko.WithTransport(httpFor(marketpkg.ProviderCoinGecko)),
			coingecko.WithLoader(s.Loader),
			coingecko.WithTTL(s.TTL.Duration(cache.TTLCoinGecko), s.TTL.Duration(cache.TTLCoinGeckoSearch)),
		),
		Yahoo: yahoo.NewClient(
			yahoo.WithBaseURL(cfg.Provider(marketpkg.ProviderYahoo).BaseURL),
			yahoo.WithTransport(httpFor(marketpkg.ProviderYahoo)),
			yahoo.WithLoader(s.Loader),
			yahoo.WithTTL(s.TTL.Duration(cache.TTLYahoo)),
		),
		FX: fxrates.NewClient(
			fxrates.WithFrankfurterURL(cfg.Provider(marketpkg.ProviderFrankfurter).BaseURL),
			fxrates.WithOpenERURL(cfg.Provider(marketpkg.ProviderOpenER).BaseURL),
			fxrates.WithTransport(httpFor(marketpkg.ProviderFrankfurter)),
		),
		Stooq: stooq.NewClient(
			stooq.WithBaseURL(cfg.Provider(marketpkg.ProviderStooq).BaseURL),
			stooq.WithTransport(httpFor(marketpkg.ProviderStooq)),
		),
	}
}

func analysisTemplate(cfg *llmpkg.Config) (*llmpkg.PromptTemplate, error) {
	if strings.TrimSpace(cfg.PromptFile) == "" {
		return nil, nil
	}
	tmpl, err := llmpkg.LoadAnalysisTemplate(cfg.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("load analysis prompt %s: %w", cfg.PromptFile, err)
	}
	return tmpl, nil
}

func envSet(key string) bool {
	return strings.TrimSpace(os.Getenv(key)) != ""
}
