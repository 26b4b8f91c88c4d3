package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/hearsay/core"
	"github.com/poiesic/hearsay/storage"
	"github.com/sirupsen/logrus"
)

// maxConflictRetries bounds how often a write transaction is replayed after
// badger reports a conflicting concurrent commit.
const maxConflictRetries = 10

// RecordRepository implements storage.RecordRepository for BadgerDB.
//
// Uniqueness by filename is enforced with an index key read and written in
// the same transaction as the record: two concurrent creators of the same
// filename both read the index key, so badger's conflict detection aborts
// the second commit, which is then replayed and observes the first one.
type RecordRepository struct {
	backend *Backend
	logger  logrus.FieldLogger
}

var _ storage.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(backend *Backend) *RecordRepository {
	return &RecordRepository{
		backend: backend,
		logger:  backend.logger,
	}
}

// Open opens a badger database at path and returns a repository that owns it.
func Open(path string, inMemory bool, logger logrus.FieldLogger) (*RecordRepository, error) {
	backend, err := OpenBackend(path, inMemory, logger)
	if err != nil {
		return nil, err
	}
	return NewRecordRepository(backend), nil
}

// Close closes the underlying backend.
func (r *RecordRepository) Close() error {
	return r.backend.Close()
}

// Exists reports whether a record for filename has been committed.
func (r *RecordRepository) Exists(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeFilenameKey(filename))
		if err == nil {
			exists = true
			return nil
		}
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}, false)
	return exists, err
}

// Create validates and persists record along with its filename and timestamp
// index entries.
func (r *RecordRepository) Create(ctx context.Context, record *core.TranscriptionRecord) error {
	if err := storage.ValidateNewRecord(record); err != nil {
		return err
	}

	value := marshalRecord(record)

	return r.retryConflicts(ctx, func() error {
		return r.backend.WithTx(func(tx *badger.Txn) error {
			filenameKey := makeFilenameKey(record.OriginalFilename)
			if _, err := tx.Get(filenameKey); err == nil {
				return fmt.Errorf("record for %q: %w", record.OriginalFilename, storage.ErrDuplicateKey)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			recordKey := makeRecordKey(record.ID)
			if _, err := tx.Get(recordKey); err == nil {
				return fmt.Errorf("record id %q: %w", record.ID, storage.ErrDuplicateKey)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			if err := tx.Set(recordKey, value); err != nil {
				return err
			}
			if err := tx.Set(filenameKey, []byte(record.ID)); err != nil {
				return err
			}
			if err := tx.Set(makeTimeKey(record.Timestamp, record.ID), []byte(record.ID)); err != nil {
				return err
			}
			return tx.Commit()
		}, true)
	})
}

// GetRecord retrieves a record by ID.
func (r *RecordRepository) GetRecord(ctx context.Context, id string) (*core.TranscriptionRecord, error) {
	var record *core.TranscriptionRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		record, err = r.readRecord(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetRecordByFilename retrieves the record for an original filename.
func (r *RecordRepository) GetRecordByFilename(ctx context.Context, filename string) (*core.TranscriptionRecord, error) {
	var record *core.TranscriptionRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFilenameKey(filename))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		record, err = r.readRecord(tx, string(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListRecords returns records matching filter, newest first.
func (r *RecordRepository) ListRecords(ctx context.Context, filter storage.RecordFilter) ([]*core.TranscriptionRecord, error) {
	var results []*core.TranscriptionRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent records first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		prefix := timeIndexPrefix()

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(timeIndexEnd()); iter.ValidForPrefix(prefix); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			id, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			record, err := r.readRecord(tx, string(id))
			if err != nil {
				return err
			}
			if !filter.Matches(record) {
				continue
			}

			results = append(results, record)
			if filter.Limit > 0 && len(results) >= filter.Limit {
				break
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AdvanceStatus moves a record forward along its lifecycle, replacing its
// notes when notes is non-nil.
func (r *RecordRepository) AdvanceStatus(ctx context.Context, id string, status core.Status, notes *string) (*core.TranscriptionRecord, error) {
	var (
		updated *core.TranscriptionRecord
		from    core.Status
	)
	err := r.retryConflicts(ctx, func() error {
		return r.backend.WithTx(func(tx *badger.Txn) error {
			record, err := r.readRecord(tx, id)
			if err != nil {
				return err
			}
			if err := core.ValidateTransition(record.Status, status); err != nil {
				return err
			}

			from = record.Status
			record.Status = status
			if notes != nil {
				record.ResolutionNotes = *notes
			}

			if err := tx.Set(makeRecordKey(id), marshalRecord(record)); err != nil {
				return err
			}
			if err := tx.Commit(); err != nil {
				return err
			}
			updated = record
			return nil
		}, true)
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"id":   id,
		"from": from,
		"to":   status,
	}).Info("record status advanced")
	return updated, nil
}

// retryConflicts replays fn while badger reports a transaction conflict.
func (r *RecordRepository) retryConflicts(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn()
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		r.logger.WithField("attempt", attempt).Debug("transaction conflict, retrying")
	}
	return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
}

// readRecord loads and decodes the record stored under id.
func (r *RecordRepository) readRecord(tx *badger.Txn, id string) (*core.TranscriptionRecord, error) {
	item, err := tx.Get(makeRecordKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var record *core.TranscriptionRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = unmarshalRecord(val)
		return unmarshalErr
	})
	return record, err
}
