package mock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/poiesic/hearsay/ai"
)

// MockTranscriber is a test double for ai.Transcriber.
// It allows custom behavior injection via function fields.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	// If nil, the file must exist and the transcription is "transcript of <basename>".
	TranscribeFunc func(ctx context.Context, path string) (ai.Transcription, error)

	mu    sync.Mutex
	calls []string
}

// NewMockTranscriber creates a mock transcriber with default behavior.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe records the call and returns the configured result.
func (m *MockTranscriber) Transcribe(ctx context.Context, path string) (ai.Transcription, error) {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	fn := m.TranscribeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, path)
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return ai.Transcription{}, fmt.Errorf("%w: %s", ai.ErrAudioNotFound, path)
	}
	return ai.Transcription{
		Text:     "transcript of " + filepath.Base(path),
		Language: "en",
	}, nil
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the paths Transcribe was called with, in order.
func (m *MockTranscriber) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Reset clears recorded calls.
func (m *MockTranscriber) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
