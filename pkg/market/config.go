package market

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"marketdash-api/pkg/confkit"
)

// Well-known provider names.
const (
	ProviderFinnhub      = "finnhub"
	ProviderAlphaVantage = "alphavantage"
	ProviderCoinGecko    = "coingecko"
	ProviderYahoo        = "yahoo"
	ProviderFrankfurter  = "frankfurter"
	ProviderOpenER       = "openerapi"
	ProviderStooq        = "stooq"
)

const defaultProviderTimeout = 8 * time.Second

// Config describes the upstream data providers.
type Config struct {
	UserAgent string                     `yaml:"user_agent"`
	Providers map[string]*ProviderConfig `yaml:"providers"`
}

// ProviderConfig represents configuration for a single upstream provider.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`

	// KeyEnv names the variable the key came from, for error messages.
	KeyEnv string `yaml:"-"`
}

type providerDefaults struct {
	baseURL string
	keyEnvs []string
}

var knownProviders = map[string]providerDefaults{
	ProviderFinnhub:      {baseURL: "https://finnhub.io/api/v1", keyEnvs: []string{"FINNHUB_API_KEY"}},
	ProviderAlphaVantage: {baseURL: "https://www.alphavantage.co/query", keyEnvs: []string{"ALPHAVANTAGE_API_KEY", "CRYPTO_API_KEY_2"}},
	ProviderCoinGecko:    {baseURL: "https://api.coingecko.com/api/v3", keyEnvs: []string{"COINGECKO_API_KEY", "CRYPTO_API_KEY_2"}},
	ProviderYahoo:        {baseURL: "https://query1.finance.yahoo.com/v8/finance/chart"},
	ProviderFrankfurter:  {baseURL: "https://api.frankfurter.app"},
	ProviderOpenER:       {baseURL: "https://open.er-api.com/v6"},
	ProviderStooq:        {baseURL: "https://stooq.com/q/d/l"},
}

// DefaultConfig returns a configuration with every provider at its public
// endpoint and keys taken from the environment.
func DefaultConfig() *Config {
	cfg := &Config{Providers: make(map[string]*ProviderConfig)}
	if err := cfg.normalise(); err != nil {
		panic(err)
	}
	return cfg
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	confkit.LoadDotenvOnce()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open providers config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	confkit.LoadDotenvOnce()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read providers config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal providers config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	if c.Providers == nil {
		c.Providers = make(map[string]*ProviderConfig)
	}
	c.UserAgent = strings.TrimSpace(os.ExpandEnv(c.UserAgent))
	for name, defaults := range knownProviders {
		provider := c.Providers[name]
		if provider == nil {
			provider = &ProviderConfig{}
			c.Providers[name] = provider
		}
		provider.expandEnv()
		provider.applyDefaults(defaults)
		if err := provider.parseDurations(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *ProviderConfig) expandEnv() {
	p.BaseURL = strings.TrimSpace(os.ExpandEnv(p.BaseURL))
	p.APIKey = strings.TrimSpace(os.ExpandEnv(p.APIKey))
	p.TimeoutRaw = strings.TrimSpace(os.ExpandEnv(p.TimeoutRaw))
}

func (p *ProviderConfig) applyDefaults(d providerDefaults) {
	if p.BaseURL == "" {
		p.BaseURL = d.baseURL
	}
	p.BaseURL = strings.TrimRight(p.BaseURL, "/")
	if len(d.keyEnvs) > 0 {
		p.KeyEnv = d.keyEnvs[0]
	}
	if p.APIKey != "" {
		return
	}
	for _, env := range d.keyEnvs {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			p.APIKey = v
			p.KeyEnv = env
			return
		}
	}
}

func (p *ProviderConfig) parseDurations(name string) error {
	p.Timeout = defaultProviderTimeout
	if p.TimeoutRaw == "" {
		return nil
	}
	d, err := time.ParseDuration(p.TimeoutRaw)
	if err != nil {
		return fmt.Errorf("market provider %s: invalid timeout %q: %w", name, p.TimeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("market provider %s: timeout must be positive, got %s", name, d)
	}
	p.Timeout = d
	return nil
}

// Validate ensures only known providers are configured.
func (c *Config) Validate() error {
	for name := range c.Providers {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("market config: provider name cannot be empty")
		}
		if _, ok := knownProviders[name]; !ok {
			return fmt.Errorf("market config: unsupported provider %q (known: %s)", name, strings.Join(ProviderNames(), ", "))
		}
	}
	return nil
}

// Provider returns the named provider configuration. It never returns nil.
func (c *Config) Provider(name string) *ProviderConfig {
	if c != nil && c.Providers != nil {
		if p, ok := c.Providers[name]; ok && p != nil {
			return p
		}
	}
	p := &ProviderConfig{}
	if d, ok := knownProviders[name]; ok {
		p.applyDefaults(d)
	}
	p.Timeout = defaultProviderTimeout
	return p
}

// HasKey reports whether the named provider has a credential configured.
func (c *Config) HasKey(name string) bool {
	return c.Provider(name).APIKey != ""
}

// ProviderNames lists the supported providers in sorted order.
func ProviderNames() []string {
	names := make([]string, 0, len(knownProviders))
	for name := range knownProviders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
