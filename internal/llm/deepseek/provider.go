// Package deepseek registers DeepSeek through its OpenAI-compatible API.
// DeepSeek has no schema enforcement, so the schema travels inside the
// prompt and the reply is requested in plain JSON mode.
package deepseek

import (
	"github.com/Rrens/slidecraft/internal/llm"
	"github.com/Rrens/slidecraft/internal/llm/openai"
)

func NewProvider(apiKey, defaultModel string) llm.Provider {
	if defaultModel == "" {
		defaultModel = "deepseek-chat"
	}
	return openai.NewCompatible(openai.Options{
		Name:         "deepseek",
		BaseURL:      "https://api.deepseek.com/v1",
		APIKey:       apiKey,
		DefaultModel: defaultModel,
		Models:       []string{"deepseek-chat", "deepseek-reasoner"},
	})
}
