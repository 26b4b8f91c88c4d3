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


package mock

import "github.com/poiesic/hearsay/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock transcriber and chat client instances.
type MockProvider struct {
	transcriber *MockTranscriber
	chat        *MockChatClient
}

// NewMockProvider creates a new mock provider with default mock services.
// The default chat client answers every request with an OTHER intent.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		transcriber: NewMockTranscriber(),
		chat:        NewStaticChatClient(`{"intent":"OTHER","entities":[]}`),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(transcriber *MockTranscriber, chat *MockChatClient) *MockProvider {
	return &MockProvider{
		transcriber: transcriber,
		chat:        chat,
	}
}

// Transcriber returns the mock transcriber.
func (p *MockProvider) Transcriber() ai.Transcriber {
	return p.transcriber
}

// ChatClient returns the mock chat client.
func (p *MockProvider) ChatClient() ai.ChatClient {
	return p.chat
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockTranscriber returns the underlying mock transcriber for test assertions.
func (p *MockProvider) GetMockTranscriber() *MockTranscriber {
	return p.transcriber
}

// GetMockChatClient returns the underlying mock chat client for test assertions.
func (p *MockProvider) GetMockChatClient() *MockChatClient {
	return p.chat
}
