package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const chatCompletionsSuffix = "/chat/completions"

// Config holds all configuration for the chatbot service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"3000"`

	// LLM chat-completion provider.
	// OPENAI_URL may be the API base (https://api.openai.com/v1) or the full
	// chat-completions endpoint; the suffix is stripped by Load.
	OpenAIURL    string `envconfig:"OPENAI_URL" default:"https://api.openai.com/v1"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" default:""` // Absence is reported per request, not at startup
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4-0125-preview"`
	LLMTimeout   int    `envconfig:"LLM_TIMEOUT" default:"60"` // seconds

	// Backend data endpoints (location, specialties, specialists)
	ServerURL      string `envconfig:"SERVER_URL" default:"http://localhost:8080/api/v1"`
	BackendTimeout int    `envconfig:"BACKEND_TIMEOUT" default:"30"` // seconds

	// Function-call loop
	MaxFunctionRounds int    `envconfig:"MAX_FUNCTION_ROUNDS" default:"10"`
	SystemPrompt      string `envconfig:"SYSTEM_PROMPT" default:""`

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) normalize() error {
	c.OpenAIURL = strings.TrimSuffix(strings.TrimRight(c.OpenAIURL, "/"), chatCompletionsSuffix)
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")

	if _, err := url.ParseRequestURI(c.OpenAIURL); err != nil {
		return fmt.Errorf("OPENAI_URL is invalid: %w", err)
	}
	if _, err := url.ParseRequestURI(c.ServerURL); err != nil {
		return fmt.Errorf("SERVER_URL is invalid: %w", err)
	}
	if c.MaxFunctionRounds < 1 {
		return fmt.Errorf("MAX_FUNCTION_ROUNDS must be at least 1, got %d", c.MaxFunctionRounds)
	}
	if c.CircuitBreakerMaxFailures < 1 {
		return fmt.Errorf("CIRCUIT_BREAKER_MAX_FAILURES must be at least 1, got %d", c.CircuitBreakerMaxFailures)
	}

	return nil
}

// HasLLMCredentials reports whether an LLM API key is configured
func (c *Config) HasLLMCredentials() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}

// LLMRequestTimeout returns the per-call LLM timeout
func (c *Config) LLMRequestTimeout() time.Duration {
	return time.Duration(c.LLMTimeout) * time.Second
}

// BackendRequestTimeout returns the per-call backend timeout
func (c *Config) BackendRequestTimeout() time.Duration {
	return time.Duration(c.BackendTimeout) * time.Second
}
