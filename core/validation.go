package core

import (
	"fmt"
	"time"
)

// ValidateTranscriptionRecord validates a TranscriptionRecord according to domain rules.
//
// Validation rules:
//   - ID and OriginalFilename must not be empty
//   - Intent must be a known label (UNKNOWN included)
//   - Status must be a lifecycle state
//   - Timestamp must not be in the future
//
// NOT validated:
//   - TranscribedText (silence transcribes to an empty string)
//   - Entities (may be empty)
func ValidateTranscriptionRecord(record *TranscriptionRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyID)
	}

	if record.OriginalFilename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyFilename)
	}

	if parsed, ok := ParseIntent(string(record.Intent)); !ok || parsed != record.Intent {
		return fmt.Errorf("%w: %w: %q", ErrInvalidRecord, ErrInvalidIntent, record.Intent)
	}

	if !record.Status.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidRecord, ErrInvalidStatus, record.Status)
	}

	if !IsValidTimestamp(record.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateTransition returns ErrInvalidTransition unless from -> to keeps the
// lifecycle monotonic.
func ValidateTransition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
// A small allowance absorbs clock skew between the host and the store.
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now().Add(time.Second))
}
