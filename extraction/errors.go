package extraction

import "errors"

var (
	// ErrChatClientRequired indicates the extractor was constructed without a chat client.
	ErrChatClientRequired = errors.New("chat client is required")

	// ErrInvalidMaxAttempts indicates a retry policy allowing fewer than one attempt.
	ErrInvalidMaxAttempts = errors.New("max attempts must be at least 1")

	// ErrInvalidShape indicates a parsed reply that does not match the extraction schema.
	ErrInvalidShape = errors.New("reply does not match extraction schema")
)
