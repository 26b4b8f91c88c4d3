package ai

import "context"

// Transcription is the text a speech-to-text service produced for one audio file.
type Transcription struct {
	// Text is the full transcription. Silence transcribes to an empty string.
	Text string

	// Language is the language the service detected, if it reports one.
	Language string
}

// Transcriber converts an audio file into text.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe reads the audio file at path and returns its transcription.
	// Returns an error wrapping ErrAudioNotFound if path is not a readable
	// regular file at call time.
	Transcribe(ctx context.Context, path string) (Transcription, error)
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// ChatClient sends a conversation to a chat model and returns the raw
// text of its reply. The reply is not interpreted in any way.
// Implementations must be thread-safe for concurrent use.
type ChatClient interface {
	// Chat returns the model's reply to messages. An empty model selects the
	// client's configured default.
	Chat(ctx context.Context, model string, messages []Message) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Transcriber returns the speech-to-text service.
	Transcriber() Transcriber

	// ChatClient returns the chat model client.
	ChatClient() ChatClient

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
