// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"github.com/poiesic/hearsay/ai"
	"github.com/poiesic/hearsay/ai/ollama"
	"github.com/sirupsen/logrus"
)

// Provider implements ai.AIProvider. Transcription always goes to an
// OpenAI-compatible endpoint; chat goes to whichever backend the config names.
type Provider struct {
	config      *ai.Config
	transcriber *Transcriber
	chat        ai.ChatClient
	logger      logrus.FieldLogger
}

// NewProvider creates a new AI provider.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to implementation details.
func NewProvider(config *ai.Config, logger logrus.FieldLogger) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	transcriber, err := NewTranscriber(config, WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var chat ai.ChatClient
	switch config.ChatBackend {
	case ai.ChatBackendOllama:
		chat, err = ollama.NewChatClient(config, logger)
	default:
		chat, err = NewChatClient(config, logger)
	}
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:      config,
		transcriber: transcriber,
		chat:        chat,
		logger:      logger.WithField("component", "ai-provider"),
	}, nil
}

// Transcriber returns the speech-to-text service.
func (p *Provider) Transcriber() ai.Transcriber {
	return p.transcriber
}

// ChatClient returns the chat model client.
func (p *Provider) ChatClient() ai.ChatClient {
	return p.chat
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing AI provider")
	return nil
}
