package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChain generates through langchaingo's OpenAI-compatible model.
type LangChain struct {
	model llms.Model
}

// NewLangChain constructs a LangChain generator from cfg.
func NewLangChain(cfg Config) (*LangChain, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm.NewLangChain: %w", err)
	}
	return &LangChain{model: model}, nil
}

func (l *LangChain) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt,
		llms.WithJSONMode(),
		llms.WithTemperature(0.4),
	)
	if err != nil {
		return "", fmt.Errorf("llm.LangChain.Generate: %w", err)
	}
	return out, nil
}
