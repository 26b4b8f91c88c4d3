// Package ollama provides an ai.ChatClient backed by an Ollama server.
package ollama

import (
	"github.com/poiesic/hearsay/ai"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms/ollama"
)

// NewChatClient creates an ai.ChatClient for the Ollama server at
// config.ChatHost. Replies are constrained to JSON with Ollama's format option.
func NewChatClient(config *ai.Config, logger logrus.FieldLogger) (*ai.LangChainClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.ChatHost),
		ollama.WithModel(config.ChatModel),
		ollama.WithFormat("json"),
	)
	if err != nil {
		return nil, err
	}

	return ai.NewLangChainClient(client, ai.WithChatLogger(logger))
}
