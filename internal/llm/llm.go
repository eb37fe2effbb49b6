// Package llm adapts chat-completion providers to a single prompt-in,
// text-out Generator. Every provider is asked for a JSON reply.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Provider names accepted by New.
const (
	ProviderLangChain = "langchain"
	ProviderOpenAI    = "openai"
)

// Generator produces one completion for one prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string

	// BaseURL overrides the OpenAI-compatible endpoint, e.g. a Gemini or
	// local gateway. Empty means the provider default.
	BaseURL string
}

// ErrUnknownProvider is returned by New for an unrecognized Config.Provider.
var ErrUnknownProvider = errors.New("unknown llm provider")

// New builds the Generator named by cfg.Provider.
func New(cfg Config) (Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm.New: api key is required")
	}
	switch cfg.Provider {
	case ProviderLangChain, "":
		return NewLangChain(cfg)
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("llm.New: %w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
