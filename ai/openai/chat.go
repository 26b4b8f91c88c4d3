package openai

import (
	"github.com/poiesic/hearsay/ai"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewChatClient creates an ai.ChatClient for an OpenAI-compatible chat
// completions API.
func NewChatClient(config *ai.Config, logger logrus.FieldLogger) (*ai.LangChainClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	token := config.ChatAPIKey
	if token == "" {
		token = "none"
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(token),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return ai.NewLangChainClient(client, ai.WithJSONMode(), ai.WithChatLogger(logger))
}
