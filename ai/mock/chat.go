package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/poiesic/hearsay/ai"
)

// ErrScriptExhausted is returned when a scripted MockChatClient runs out of replies.
var ErrScriptExhausted = errors.New("mock chat script exhausted")

// Reply is one scripted chat response.
type Reply struct {
	Content string
	Err     error
}

// MockChatClient is a test double for ai.ChatClient.
// Replies come from ChatFunc if set, otherwise from the script in order.
type MockChatClient struct {
	// ChatFunc is called by Chat if set.
	ChatFunc func(ctx context.Context, model string, messages []ai.Message) (string, error)

	mu     sync.Mutex
	script []Reply
	calls  [][]ai.Message
}

// NewMockChatClient creates a mock chat client that plays back replies in order.
func NewMockChatClient(replies ...Reply) *MockChatClient {
	return &MockChatClient{script: replies}
}

// NewStaticChatClient creates a mock chat client that always answers content.
func NewStaticChatClient(content string) *MockChatClient {
	return &MockChatClient{
		ChatFunc: func(ctx context.Context, model string, messages []ai.Message) (string, error) {
			return content, nil
		},
	}
}

// Chat records the call and returns the next scripted reply.
func (m *MockChatClient) Chat(ctx context.Context, model string, messages []ai.Message) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, messages)
	fn := m.ChatFunc
	var (
		next Reply
		ok   bool
	)
	if fn == nil && len(m.script) > 0 {
		next, m.script, ok = m.script[0], m.script[1:], true
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, model, messages)
	}
	if !ok {
		return "", ErrScriptExhausted
	}
	return next.Content, next.Err
}

// CallCount returns the number of times Chat was called.
func (m *MockChatClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastMessages returns the messages of the most recent call.
func (m *MockChatClient) LastMessages() []ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}

// Reset clears recorded calls. The remaining script is kept.
func (m *MockChatClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
