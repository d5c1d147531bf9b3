package service

import (
	"context"

	"github.com/docqa/docqa-be/types"
)

// AIService is one chat-completion provider. Implementations must be
// stateless per call and must return an error rather than an empty answer.
type AIService interface {
	Name() string
	Chat(ctx context.Context, systemPrompt string, messages []types.Message) (string, error)
}

// ProviderConfig is the recognized option set for one provider.
type ProviderConfig struct {
	Name        string  `mapstructure:"name"`
	APIKey      string  `mapstructure:"api_key"`
	Endpoint    string  `mapstructure:"endpoint"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}
