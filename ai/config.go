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


package ai

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// TranscriptionHost is the base URL for the OpenAI-compatible speech-to-text API.
	// Example: "http://localhost:8000/v1" for a local whisper server
	TranscriptionHost string

	// TranscriptionModel is the model identifier sent with each transcription request.
	// Example: "whisper-1", "small"
	TranscriptionModel string

	// TranscriptionAPIKey is sent as a bearer token. Local servers usually ignore it.
	TranscriptionAPIKey string

	// TranscriptionMaxElapsed bounds how long a single transcription keeps
	// retrying transient failures.
	// Default: 2 minutes
	TranscriptionMaxElapsed time.Duration

	// ChatBackend selects the chat client implementation: "openai" or "ollama".
	ChatBackend string

	// ChatHost is the base URL for the chat service.
	// Example: "http://localhost:11434" for Ollama, "http://localhost:11434/v1" for OpenAI-compatible
	ChatHost string

	// ChatModel is the model identifier to use for structured extraction.
	// Example: "mistral:v0.3", "gpt-4o-mini"
	ChatModel string

	// ChatAPIKey is sent as a bearer token to OpenAI-compatible chat services.
	ChatAPIKey string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithTranscriptionHost sets the transcription service host URL.
func WithTranscriptionHost(host string) ConfigOption {
	return func(c *Config) {
		c.TranscriptionHost = host
	}
}

// WithChatHost sets the chat service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both transcription and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.TranscriptionHost = host
		c.ChatHost = host
	}
}

// WithTranscriptionModel sets the transcription model identifier.
func WithTranscriptionModel(model string) ConfigOption {
	return func(c *Config) {
		c.TranscriptionModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithChatBackend selects the chat backend.
func WithChatBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.ChatBackend = backend
	}
}

// WithAPIKey sets the same bearer token for both services.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.TranscriptionAPIKey = key
		c.ChatAPIKey = key
	}
}

// WithTranscriptionMaxElapsed bounds transcription retries.
func WithTranscriptionMaxElapsed(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.TranscriptionMaxElapsed = d
	}
}

// DefaultConfig returns a Config with sensible defaults for local services:
// a whisper server for transcription and Ollama for chat.
func DefaultConfig() *Config {
	return &Config{
		TranscriptionHost:       "http://localhost:8000/v1",
		TranscriptionModel:      "whisper-1",
		TranscriptionMaxElapsed: 2 * time.Minute,
		ChatBackend:             ChatBackendOllama,
		ChatHost:                "http://localhost:11434",
		ChatModel:               "mistral:v0.3",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithChatBackend(ChatBackendOpenAI),
//       WithChatHost("https://api.openai.com/v1"),
//       WithChatModel("gpt-4o-mini"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// OpenAI-compatible hosts get a /v1 suffix if missing. Ollama hosts are
// left without one since langchaingo's Ollama client addresses /api itself.
func (c *Config) Normalize() {
	c.ChatBackend = strings.ToLower(strings.TrimSpace(c.ChatBackend))
	c.TranscriptionHost = ensureV1(c.TranscriptionHost)
	if c.ChatBackend == ChatBackendOpenAI {
		c.ChatHost = ensureV1(c.ChatHost)
	} else {
		c.ChatHost = strings.TrimSuffix(c.ChatHost, "/")
	}
}

func ensureV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	// Remove trailing slash if present before adding /v1
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	if c.TranscriptionHost == "" {
		return errors.New("ai config: TranscriptionHost is required")
	}
	if c.TranscriptionModel == "" {
		return errors.New("ai config: TranscriptionModel is required")
	}
	if c.TranscriptionMaxElapsed <= 0 {
		return errors.New("ai config: TranscriptionMaxElapsed must be positive")
	}
	if !slices.Contains(ChatBackends, c.ChatBackend) {
		return errors.New("ai config: ChatBackend must be one of " + strings.Join(ChatBackends, ", "))
	}
	if c.ChatHost == "" {
		return errors.New("ai config: ChatHost is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	return nil
}
