// Package llm wraps the chat model providers behind one blocking call.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Completer sends one system+user exchange and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Options are the sampling and transport settings shared by providers.
type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	BaseURL     string // empty selects the provider's public endpoint
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// New returns the client for provider.
func New(provider, apiKey, model string, opts Options) (Completer, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	switch strings.ToLower(provider) {
	case ProviderOpenAI, "":
		return NewOpenAIClient(apiKey, model, opts), nil
	case ProviderAnthropic, "claude":
		return NewClaudeClient(apiKey, model, opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", provider)
	}
}

// StatusError is a non-200 answer from a provider. 429 and 5xx are
// reported as transient so callers can say so; nothing retries them.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm api status %d: %s", e.StatusCode, truncate(e.Message, 200))
}

// Transient reports whether the provider signalled overload or an outage.
func (e *StatusError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
