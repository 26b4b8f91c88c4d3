package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a record store is not provided.
	ErrStoreRequired = errors.New("record store required")

	// ErrTranscriberRequired is returned when a transcriber is not provided.
	ErrTranscriberRequired = errors.New("transcriber required")

	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrSourceRequired is returned when a candidate source is not provided.
	ErrSourceRequired = errors.New("candidate source required")

	// ErrInvalidInterval is returned for a non-positive poll interval or file timeout.
	ErrInvalidInterval = errors.New("interval must be positive")

	// ErrTranscription wraps a failed transcription. The file is retried on a later tick.
	ErrTranscription = errors.New("transcription failed")

	// ErrPersistence wraps a store failure other than a duplicate filename.
	ErrPersistence = errors.New("persistence failed")
)
