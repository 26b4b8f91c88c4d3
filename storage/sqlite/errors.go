package sqlite

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/poiesic/hearsay/storage"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// mapError translates driver errors into storage sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}

	var sqlErr *msqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return storage.ErrDuplicateKey
		case sqlite3.SQLITE_CONSTRAINT:
			if strings.Contains(sqlErr.Error(), "UNIQUE") {
				return storage.ErrDuplicateKey
			}
		}
	}

	return err
}
