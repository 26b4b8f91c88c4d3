package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/poiesic/hearsay/core"
	"github.com/poiesic/hearsay/storage"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const recordColumns = `id, original_filename, transcribed_text, language, intent, entities, timestamp, status, resolution_notes`

// Store implements storage.RecordRepository on a SQLite database file.
type Store struct {
	db      *sql.DB
	logger  logrus.FieldLogger
	version uint
	closed  atomic.Bool
}

var _ storage.RecordRepository = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// DSN builds the connection string used for path.
// Writers take the database lock at BEGIN so concurrent Create calls
// serialize instead of failing with SQLITE_BUSY mid-transaction.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate&_time_format=sqlite", path)
}

// Open opens (creating if necessary) the database at path and applies
// pending migrations. Any failure is reported as storage.ErrStorageUnavailable.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("component", "sqlite-store")

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", storage.ErrStorageUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", storage.ErrStorageUnavailable, err)
	}

	version, err := Migrate(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", storage.ErrStorageUnavailable, err)
	}

	s.db = db
	s.version = version
	s.logger.WithFields(logrus.Fields{
		"path":           path,
		"schema_version": version,
	}).Debug("store opened")
	return s, nil
}

// SchemaVersion returns the migration version applied when the store was opened.
func (s *Store) SchemaVersion() uint {
	return s.version
}

// Close closes the database connection.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) checkOpen() error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	return nil
}

// Exists reports whether a record for filename has been committed.
func (s *Store) Exists(ctx context.Context, filename string) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM transcriptions WHERE original_filename = ?`, filename).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query record existence: %w", err)
	}
	return true, nil
}

// Create validates and inserts record. A filename clash is reported as
// storage.ErrDuplicateKey and leaves the existing row untouched.
func (s *Store) Create(ctx context.Context, record *core.TranscriptionRecord) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := storage.ValidateNewRecord(record); err != nil {
		return err
	}

	entities, err := storage.MarshalEntities(record.Entities)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transcriptions (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.OriginalFilename,
		record.TranscribedText,
		record.Language,
		string(record.Intent),
		entities,
		record.Timestamp.UTC(),
		string(record.Status),
		record.ResolutionNotes,
	)
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, storage.ErrDuplicateKey) {
			return fmt.Errorf("record for %q: %w", record.OriginalFilename, storage.ErrDuplicateKey)
		}
		return fmt.Errorf("insert record: %w", mapped)
	}
	return nil
}

// GetRecord retrieves a record by ID.
func (s *Store) GetRecord(ctx context.Context, id string) (*core.TranscriptionRecord, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM transcriptions WHERE id = ?`, id)
	return scanRecord(row)
}

// GetRecordByFilename retrieves the record for an original filename.
func (s *Store) GetRecordByFilename(ctx context.Context, filename string) (*core.TranscriptionRecord, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM transcriptions WHERE original_filename = ?`, filename)
	return scanRecord(row)
}

// ListRecords returns records matching filter, newest first.
func (s *Store) ListRecords(ctx context.Context, filter storage.RecordFilter) ([]*core.TranscriptionRecord, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Intent != "" {
		where = append(where, "intent = ?")
		args = append(args, string(filter.Intent))
	}

	query := `SELECT ` + recordColumns + ` FROM transcriptions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []*core.TranscriptionRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// AdvanceStatus moves a record forward along its lifecycle, replacing its
// notes when notes is non-nil.
func (s *Store) AdvanceStatus(ctx context.Context, id string, status core.Status, notes *string) (*core.TranscriptionRecord, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	record, err := scanRecord(tx.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM transcriptions WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	if err := core.ValidateTransition(record.Status, status); err != nil {
		return nil, err
	}
	from := record.Status
	record.Status = status
	if notes != nil {
		record.ResolutionNotes = *notes
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE transcriptions SET status = ?, resolution_notes = ? WHERE id = ?`,
		string(status), record.ResolutionNotes, id); err != nil {
		return nil, fmt.Errorf("update record status: %w", mapError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":   id,
		"from": from,
		"to":   status,
	}).Info("record status advanced")
	return record, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*core.TranscriptionRecord, error) {
	var (
		record   core.TranscriptionRecord
		intent   string
		status   string
		entities string
	)
	err := row.Scan(
		&record.ID,
		&record.OriginalFilename,
		&record.TranscribedText,
		&record.Language,
		&intent,
		&entities,
		&record.Timestamp,
		&status,
		&record.ResolutionNotes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}

	record.Intent = core.Intent(intent)
	record.Status = core.Status(status)
	record.Timestamp = record.Timestamp.UTC()
	record.Entities, err = storage.UnmarshalEntities(entities)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
