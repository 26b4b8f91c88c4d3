package watcher

import "errors"

var (
	// ErrDirRequired is returned when no watch directory is given.
	ErrDirRequired = errors.New("watch directory required")

	// ErrNotDirectory is returned when the watch path exists but is not a directory.
	ErrNotDirectory = errors.New("watch path is not a directory")
)
