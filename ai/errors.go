package ai

import "errors"

var (
	// ErrAudioNotFound indicates the audio file is missing or not a regular file.
	ErrAudioNotFound = errors.New("audio file not found")

	// ErrNoChoices indicates a chat model returned no completion choices.
	ErrNoChoices = errors.New("no choices returned from model")

	// ErrNilModel indicates a chat client was constructed without a model.
	ErrNilModel = errors.New("llm model is required")
)
