package di

import (
	"flag"
	"io"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phish-scanner/internal/adapters/static"
	"github.com/mikey/phish-scanner/internal/config"
	"github.com/mikey/phish-scanner/internal/core"
	"github.com/mikey/phish-scanner/internal/logging"
)

// CLIFlags contains all command line flags for the checker
type CLIFlags struct {
	// Page flags
	URL       string
	Title     string
	InputFile string

	// Scoring flags
	Strategy       string
	Endpoint       string
	TrustedDomains string

	// LLM provider flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Output flags
	Format     string
	Storage    string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("phish-check", flag.ContinueOnError)

	// Page flags
	fs.StringVar(&flags.URL, "url", "", "URL of the page being checked")
	fs.StringVar(&flags.Title, "title", "", "Title of the page being checked")
	fs.StringVar(&flags.InputFile, "file", "", "File with the visible page text (use stdin if not specified)")

	// Scoring flags
	fs.StringVar(&flags.Strategy, "strategy", "heuristic", "Scoring strategy (heuristic, remote, llm)")
	fs.StringVar(&flags.Endpoint, "endpoint", "http://localhost:8501/analyze", "Remote analysis endpoint")
	fs.StringVar(&flags.TrustedDomains, "trusted", "", "Comma-separated list of trusted domains")

	// LLM provider flags
	fs.StringVar(&flags.Provider, "provider", "openai", "LLM provider (bedrock, gemini, openai)")
	fs.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	fs.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	fs.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	fs.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum page text size to send to the LLM")

	// Bedrock flags
	fs.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	fs.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	fs.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	fs.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	fs.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	// Output flags
	fs.StringVar(&flags.Format, "format", "text", "Output format (text, json, yaml)")
	fs.StringVar(&flags.Storage, "storage", "none", "Where to record the result (none, memory, sqlite, mysql)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Show reasons, safety tips and debug logs")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the checker
func BuildCLIContainer(flags *CLIFlags, stdin io.Reader) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideShared(container); err != nil {
		return nil, err
	}

	// Register page source
	if err := container.Provide(func(flags *CLIFlags) (core.ContentExtractor, error) {
		if flags.InputFile == "" {
			return static.NewExtractorFromReader(stdin, flags.URL, flags.Title)
		}
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return static.NewExtractorFromReader(file, flags.URL, flags.Title)
	}); err != nil {
		return nil, err
	}

	// Register scan service
	if err := container.Provide(newScanService); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("output.format", flags.Format)
	v.Set("output.verbose", flags.Verbose)
	v.Set("storage.type", flags.Storage)

	// Set scoring strategy
	v.Set("scoring.strategy", flags.Strategy)
	v.Set("scanner.analyze_endpoint", flags.Endpoint)
	if flags.TrustedDomains != "" {
		domains := strings.Split(flags.TrustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("scoring.trusted_domains", domains)
	}

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	}

	return config.NewFromViper(v)
}
