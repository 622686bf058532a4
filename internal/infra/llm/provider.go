package llm

import (
	"context"
	"fmt"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/internal/infra/config"
	"github.com/yanqian/kai-insight/internal/infra/llm/gemini"
	"github.com/yanqian/kai-insight/internal/infra/llm/openai"
)

// Generator produces both the structured analysis and the product image.
type Generator interface {
	analysis.TextGenerator
	analysis.ImageGenerator
}

// New builds the adapter named by cfg.Provider. An empty provider means gemini.
func New(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.BaseURL)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenAI:
		client, err := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
