package llm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1"
	defaultModel       = "mistralai/mistral-7b-instruct"
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 2
	defaultLogLevel    = "info"
	defaultTemperature = 0.6
	defaultMaxTokens   = 450
	defaultTitle       = "Investment Guru AI"

	envOpenRouterKey = "OPENROUTER_API_KEY"
	envOpenAIKey     = "OPENAI_API_KEY"
	envBaseURL       = "LLM_BASE_URL"
	envModel         = "LLM_MODEL"
	envTimeout       = "LLM_TIMEOUT"
	envMaxRetries    = "LLM_MAX_RETRIES"
)

// ErrMissingAPIKey is returned when no chat credential is configured.
var ErrMissingAPIKey = errors.New("llm: missing OPENROUTER_API_KEY or OPENAI_API_KEY")

// Config holds runtime settings for the chat client.
type Config struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	DefaultModel string        `yaml:"default_model"`
	Timeout      time.Duration `yaml:"-"`
	MaxRetries   int           `yaml:"max_retries"`
	LogLevel     string        `yaml:"log_level"`
	Temperature  float64       `yaml:"temperature"`
	MaxTokens    int           `yaml:"max_tokens"`
	// Referer and Title are sent as OpenRouter attribution headers.
	Referer string `yaml:"referer"`
	Title   string `yaml:"title"`
	// PromptFile optionally replaces the built-in analysis template.
	PromptFile string `yaml:"prompt_file"`

	timeoutRaw string
}

// DefaultConfig returns the OpenRouter defaults with credentials from the
// environment.
func DefaultConfig() *Config {
	cfg := &Config{MaxRetries: -1, Temperature: -1}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	cfg.Timeout = defaultTimeout
	return cfg
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open llm config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from a reader. A missing API key
// is not an error here; the client refuses to start without one.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	var raw struct {
		BaseURL      string   `yaml:"base_url"`
		APIKey       string   `yaml:"api_key"`
		DefaultModel string   `yaml:"default_model"`
		Timeout      string   `yaml:"timeout"`
		MaxRetries   *int     `yaml:"max_retries"`
		LogLevel     string   `yaml:"log_level"`
		Temperature  *float64 `yaml:"temperature"`
		MaxTokens    int      `yaml:"max_tokens"`
		Referer      string   `yaml:"referer"`
		Title        string   `yaml:"title"`
		PromptFile   string   `yaml:"prompt_file"`
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read llm config: %w", err)
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal llm config: %w", err)
	}

	cfg := &Config{
		BaseURL:      raw.BaseURL,
		APIKey:       raw.APIKey,
		DefaultModel: raw.DefaultModel,
		MaxRetries:   -1,
		LogLevel:     raw.LogLevel,
		Temperature:  -1,
		MaxTokens:    raw.MaxTokens,
		Referer:      raw.Referer,
		Title:        raw.Title,
		PromptFile:   raw.PromptFile,
		timeoutRaw:   raw.Timeout,
	}
	if raw.MaxRetries != nil {
		cfg.MaxRetries = *raw.MaxRetries
	}
	if raw.Temperature != nil {
		cfg.Temperature = *raw.Temperature
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	if err := cfg.parseTimeout(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings other than the credential.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("llm config: base_url is required")
	}
	if strings.TrimSpace(c.DefaultModel) == "" {
		return errors.New("llm config: default_model is required")
	}
	if c.Timeout <= 0 {
		return errors.New("llm config: timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("llm config: max_retries cannot be negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm config: temperature %v out of range [0,2]", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return errors.New("llm config: max_tokens must be positive")
	}
	return nil
}

// HasKey reports whether a chat credential is configured.
func (c *Config) HasKey() bool {
	return c != nil && strings.TrimSpace(c.APIKey) != ""
}

// Clone returns a shallow copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.DefaultModel) == "" {
		c.DefaultModel = defaultModel
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.Temperature < 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if strings.TrimSpace(c.Title) == "" {
		c.Title = defaultTitle
	}
}

func (c *Config) applyEnvOverrides() {
	c.BaseURL = expandAndOverride(c.BaseURL, envBaseURL)
	c.DefaultModel = expandAndOverride(c.DefaultModel, envModel)
	c.APIKey = strings.TrimSpace(os.ExpandEnv(c.APIKey))
	if c.APIKey == "" {
		c.APIKey = firstEnv(envOpenRouterKey, envOpenAIKey)
	}
	c.PromptFile = os.ExpandEnv(c.PromptFile)

	if raw := os.Getenv(envTimeout); raw != "" {
		c.timeoutRaw = raw
	} else {
		c.timeoutRaw = os.ExpandEnv(c.timeoutRaw)
	}

	if raw := os.Getenv(envMaxRetries); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			c.MaxRetries = v
		}
	}
}

func (c *Config) parseTimeout() error {
	if strings.TrimSpace(c.timeoutRaw) == "" {
		c.Timeout = defaultTimeout
		return nil
	}

	d, err := time.ParseDuration(c.timeoutRaw)
	if err != nil {
		return fmt.Errorf("llm config: invalid timeout %q: %w", c.timeoutRaw, err)
	}
	if d <= 0 {
		return fmt.Errorf("llm config: timeout must be positive, got %s", d)
	}
	c.Timeout = d
	return nil
}

func expandAndOverride(current, envKey string) string {
	current = os.ExpandEnv(current)
	if envVal := os.Getenv(envKey); envVal != "" {
		return envVal
	}
	return current
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
