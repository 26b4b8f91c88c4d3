package storage

import (
	"context"

	"github.com/poiesic/hearsay/core"
)

// RecordFilter narrows ListRecords results. Zero values mean "no constraint".
type RecordFilter struct {
	Status core.Status
	Intent core.Intent
	// Limit caps the number of returned records. Zero or negative means no limit.
	Limit int
}

// Matches reports whether record satisfies the filter's status and intent constraints.
func (f RecordFilter) Matches(record *core.TranscriptionRecord) bool {
	if f.Status != "" && record.Status != f.Status {
		return false
	}
	if f.Intent != "" && record.Intent != f.Intent {
		return false
	}
	return true
}

// RecordRepository is the durable store of transcription records.
// Implementations must be thread-safe and support concurrent access.
type RecordRepository interface {
	// Exists reports whether a record for filename has been committed.
	Exists(ctx context.Context, filename string) (bool, error)

	// Create validates and atomically persists a new unresolved record.
	// Returns ErrDuplicateKey if a record for the same filename already exists;
	// the existing record is left untouched.
	Create(ctx context.Context, record *core.TranscriptionRecord) error

	// GetRecord retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id string) (*core.TranscriptionRecord, error)

	// GetRecordByFilename retrieves the record for an original filename.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecordByFilename(ctx context.Context, filename string) (*core.TranscriptionRecord, error)

	// ListRecords returns records matching filter, newest first.
	ListRecords(ctx context.Context, filter RecordFilter) ([]*core.TranscriptionRecord, error)

	// AdvanceStatus moves a record along its resolution lifecycle. A non-nil
	// notes replaces the resolution notes; nil keeps the stored ones. The read
	// and the write happen in one transaction. Returns core.ErrInvalidTransition
	// if the move would regress the status, ErrNotFound if the record doesn't exist.
	AdvanceStatus(ctx context.Context, id string, status core.Status, notes *string) (*core.TranscriptionRecord, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
