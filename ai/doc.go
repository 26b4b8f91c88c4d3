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


// Package ai provides abstractions for the AI services hearsay depends on.
//
// This package defines interfaces for the two external collaborators of the
// ingestion pipeline: speech-to-text and a chat model. The pipeline and the
// extraction state machine depend on these abstractions rather than on any
// concrete client.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Transcriber: Converts an audio file into text
//   - ChatClient: Sends a conversation to a chat model and returns the raw reply
//   - AIProvider: Aggregates AI services for convenient initialization
//
// ChatClient deliberately returns unparsed text. Turning an unreliable reply
// into a validated structure is the job of the extraction package.
//
// # Implementation Packages
//
//   - ai/openai: OpenAI-compatible transcription and chat clients
//   - ai/ollama: Chat client for an Ollama server
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// LangChainClient adapts any langchaingo llms.Model to ChatClient; both the
// OpenAI and Ollama chat clients are built on it.
//
// # Constructor Return Type Pattern
//
// openai.NewProvider returns the ai.AIProvider INTERFACE so callers stay
// decoupled from the backend it picked. Mock constructors return CONCRETE
// types so tests can inject behavior and inspect call counts.
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	tr, err := provider.Transcriber().Transcribe(ctx, "/incoming/call.wav")
//
//	// Testing usage with mocks
//	mockProvider := mock.NewMockProvider()
//	tr, err := mockProvider.Transcriber().Transcribe(ctx, path)
package ai
