package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Model provider
	LLMProvider     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMTemperature  float64
	LLMMaxTokens    int
	LLMTimeout      time.Duration

	// Files
	DataDir      string
	SchemaPath   string
	DocxTemplate string

	// HTTP
	PublicBaseURL string
	APIKey        string
	MaxBodyBytes  int64

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads .env (when present) and then the environment. Variables
// already set win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() Config {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		LLMProvider:     strings.ToLower(envOr("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     envOr("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		LLMTemperature:  envFloat("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:    envInt("LLM_MAX_TOKENS", 4096),
		LLMTimeout:      envDuration("LLM_TIMEOUT", 120*time.Second),

		DataDir: envOr("DATA_DIR", "data"),

		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		APIKey:        os.Getenv("API_KEY"),
		MaxBodyBytes:  envInt64("MAX_BODY_BYTES", 1<<20),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}
	cfg.SchemaPath = envOr("SCHEMA_PATH", filepath.Join(cfg.DataDir, "schema.json"))
	cfg.DocxTemplate = envOr("DOCX_TEMPLATE", filepath.Join(cfg.DataDir, "template.docx"))

	if cfg.LLMTemperature < 0 || cfg.LLMTemperature > 2 {
		cfg.LLMTemperature = 0.2
	}
	if cfg.LLMMaxTokens <= 0 {
		cfg.LLMMaxTokens = 4096
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	return cfg
}

// Model returns the model name for the selected provider.
func (c Config) Model() string {
	if c.LLMProvider == "anthropic" {
		return c.AnthropicModel
	}
	return c.OpenAIModel
}

// ProviderKey returns the API key for the selected provider.
func (c Config) ProviderKey() string {
	if c.LLMProvider == "anthropic" {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

func (c Config) Validate() error {
	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or anthropic, got %q", c.LLMProvider)
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
