package badger

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/hearsay/storage"
	"github.com/sirupsen/logrus"
)

// Backend wraps a BadgerDB instance and provides low-level operations.
type Backend struct {
	db     *badger.DB
	logger logrus.FieldLogger
}

// badgerLoggerAdapter routes badger's internal logging through logrus.
// Badger reports routine compaction and value-log chatter at info level,
// which is demoted to debug here.
type badgerLoggerAdapter struct {
	logger logrus.FieldLogger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Errorf(msg, items...)
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warnf(msg, items...)
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debugf(msg, items...)
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debugf(msg, items...)
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist. A nil logger uses the logrus
// standard logger. Failures are reported as storage.ErrStorageUnavailable.
func OpenBackend(filePath string, inMemory bool, logger logrus.FieldLogger) (*Backend, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "badger-store")

	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
				}
			} else {
				return nil, fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", storage.ErrStorageUnavailable, filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
	}

	return &Backend{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	if b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}
