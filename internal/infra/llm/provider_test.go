package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/kai-insight/internal/infra/config"
	"github.com/yanqian/kai-insight/internal/infra/llm/openai"
)

func TestNewSelectsOpenAI(t *testing.T) {
	t.Parallel()
	gen, err := New(context.Background(), config.LLMConfig{
		Provider: config.ProviderOpenAI,
		OpenAI:   config.ProviderConfig{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1/v1"},
	})
	require.NoError(t, err)
	require.IsType(t, &openai.Client{}, gen)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	t.Parallel()
	_, err := New(context.Background(), config.LLMConfig{Provider: "claude"})
	require.ErrorContains(t, err, "unknown llm provider")
}
