package config

import (
	"strings"
	"time"
)

// Scoring strategies
const (
	StrategyHeuristic = "heuristic"
	StrategyRemote    = "remote"
	StrategyLLM       = "llm"
)

const defaultAutoScanIntervalMs = 5000

// analyzePath is appended to scanner.base_url when no endpoint is configured
const analyzePath = "/analyze"

// ScannerConfig represents the scan engine configuration
type ScannerConfig struct {
	BaseURL          string
	AnalyzeEndpoint  string
	AutoScanInterval time.Duration
	UseRemoteMode    bool
	RequestTimeout   time.Duration
}

// ScoringConfig represents the scorer selection
type ScoringConfig struct {
	Strategy       string
	TrustedDomains []string
}

// BrowserConfig represents how the page extractor reaches Chrome
type BrowserConfig struct {
	ControlURL string
	Headless   bool
	Timeout    time.Duration
}

// StorageConfig represents the key-value backend configuration
type StorageConfig struct {
	Type       string
	Timeout    time.Duration
	SQLitePath string
	MySQLDSN   string
}

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetScanner returns the scanner configuration. Non-positive intervals fall
// back to the default, and a missing analyze endpoint is derived from the
// base URL.
func (c *Config) GetScanner() ScannerConfig {
	intervalMs := c.GetInt("scanner.auto_scan_interval")
	if intervalMs < 1 {
		intervalMs = defaultAutoScanIntervalMs
	}
	baseURL := strings.TrimRight(c.GetString("scanner.base_url"), "/")
	endpoint := c.GetString("scanner.analyze_endpoint")
	if endpoint == "" && baseURL != "" {
		endpoint = baseURL + analyzePath
	}
	return ScannerConfig{
		BaseURL:          baseURL,
		AnalyzeEndpoint:  endpoint,
		AutoScanInterval: time.Duration(intervalMs) * time.Millisecond,
		UseRemoteMode:    c.GetBool("scanner.use_remote_mode"),
		RequestTimeout:   c.durationOr("scanner.request_timeout", 10*time.Second),
	}
}

// GetScoring returns the scoring configuration. use_remote_mode overrides
// the heuristic strategy.
func (c *Config) GetScoring() ScoringConfig {
	strategy := strings.ToLower(c.GetString("scoring.strategy"))
	if strategy == "" {
		strategy = StrategyHeuristic
	}
	if c.GetBool("scanner.use_remote_mode") && strategy == StrategyHeuristic {
		strategy = StrategyRemote
	}
	return ScoringConfig{
		Strategy:       strategy,
		TrustedDomains: c.GetStringSlice("scoring.trusted_domains"),
	}
}

// GetBrowser returns the browser configuration
func (c *Config) GetBrowser() BrowserConfig {
	return BrowserConfig{
		ControlURL: c.GetString("browser.control_url"),
		Headless:   c.GetBool("browser.headless"),
		Timeout:    c.durationOr("browser.timeout", 15*time.Second),
	}
}

// GetStorage returns the storage configuration
func (c *Config) GetStorage() StorageConfig {
	return StorageConfig{
		Type:       strings.ToLower(c.GetString("storage.type")),
		Timeout:    c.durationOr("storage.timeout", 2*time.Second),
		SQLitePath: c.GetString("storage.sqlite_path"),
		MySQLDSN:   c.GetString("storage.mysql_dsn"),
	}
}

func (c *Config) durationOr(key string, fallback time.Duration) time.Duration {
	d, err := c.GetDuration(key)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
