package ai

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
)

// LangChainClient implements ChatClient on top of any langchaingo llms.Model.
type LangChainClient struct {
	model    llms.Model
	jsonMode bool
	logger   logrus.FieldLogger
}

var _ ChatClient = (*LangChainClient)(nil)

// LangChainOption configures a LangChainClient.
type LangChainOption func(*LangChainClient)

// WithJSONMode asks the backend to constrain replies to JSON where it supports that.
func WithJSONMode() LangChainOption {
	return func(c *LangChainClient) {
		c.jsonMode = true
	}
}

// WithChatLogger sets the logger used by the client.
func WithChatLogger(logger logrus.FieldLogger) LangChainOption {
	return func(c *LangChainClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewLangChainClient wraps model as a ChatClient.
func NewLangChainClient(model llms.Model, opts ...LangChainOption) (*LangChainClient, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	c := &LangChainClient{
		model:  model,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithField("component", "chat-client")
	return c, nil
}

// Chat sends messages at temperature 0 and returns the first choice's content.
func (c *LangChainClient) Chat(ctx context.Context, model string, messages []Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	callOpts := []llms.CallOption{llms.WithTemperature(0.0)}
	if model != "" {
		callOpts = append(callOpts, llms.WithModel(model))
	}
	if c.jsonMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	response, err := c.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if response == nil || len(response.Choices) < 1 {
		c.logger.Debug("no choices returned from model")
		return "", ErrNoChoices
	}
	return response.Choices[0].Content, nil
}

func chatMessageType(role Role) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
