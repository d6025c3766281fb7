// Package reasoning adapts external chat-completion services into per-object
// transform/preserve decisions.
package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Reasoner produces a decision for a prompt. Decide never fails: service
// problems come back as a fallback Result with Err set.
// Implementations must be safe for concurrent use.
type Reasoner interface {
	Decide(ctx context.Context, prompt string) Result
}

// ReasonerFunc adapts a plain function to the Reasoner interface.
type ReasonerFunc func(ctx context.Context, prompt string) Result

// Decide calls f(ctx, prompt).
func (f ReasonerFunc) Decide(ctx context.Context, prompt string) Result {
	return f(ctx, prompt)
}

// ProviderOpenAI selects the OpenAI chat completions API.
const ProviderOpenAI = "openai"

// ErrUnsupportedProvider is returned by New for unknown provider names.
var ErrUnsupportedProvider = errors.New("reasoning: unsupported provider")

// Config selects and configures a provider.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration // per attempt
	MaxAttempts int
	Backoff     time.Duration // delay before the second attempt; doubles after
	Temperature *float64      // nil keeps the provider default
}

// New builds the Reasoner for cfg.Provider. Zero-valued fields keep the
// provider defaults; a non-nil Temperature is sent as given, zero included.
func New(cfg Config, logger *zap.Logger) (Reasoner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = ProviderOpenAI
	}

	switch provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			logger.Warn("LLM API key not configured; requests will likely be rejected")
		}
		opts := []Option{WithLogger(logger)}
		if cfg.Temperature != nil {
			opts = append(opts, WithTemperature(*cfg.Temperature))
		}
		if cfg.Model != "" {
			opts = append(opts, WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.MaxAttempts > 0 {
			opts = append(opts, WithMaxAttempts(cfg.MaxAttempts))
		}
		if cfg.Backoff > 0 {
			opts = append(opts, WithBackoff(cfg.Backoff))
		}
		return NewOpenAIClient(cfg.APIKey, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}
