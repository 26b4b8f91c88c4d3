// Package watcher lists candidate audio files in a drop folder.
//
// The watcher is stateless: it does not remember what it has proposed.
// Deduplication belongs to the record store, which lets a restarted
// process pick up exactly where the previous one stopped.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultExtensions is the audio allow-list used when none is configured.
var DefaultExtensions = []string{".wav", ".mp3", ".m4a", ".flac"}

// Candidate is a file the pipeline may process.
type Candidate struct {
	// Name is the base filename and the dedup key.
	Name string
	// Path is the full path used to read the audio.
	Path string
}

// Watcher proposes candidate files from a single directory.
type Watcher struct {
	dir        string
	extensions map[string]struct{}
	logger     logrus.FieldLogger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithExtensions replaces the extension allow-list. Matching is
// case-insensitive and the leading dot is optional. An empty list accepts
// every regular file.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.extensions = normalizeExtensions(exts)
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher for dir. The directory does not have to exist yet;
// a missing directory is reported by Candidates on each tick.
func New(dir string, opts ...Option) (*Watcher, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrDirRequired
	}
	w := &Watcher{
		dir:        filepath.Clean(dir),
		extensions: normalizeExtensions(DefaultExtensions),
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithFields(logrus.Fields{
		"component": "watcher",
		"dir":       w.dir,
	})
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Candidates lists the regular files in the directory that pass the
// extension filter, in lexical order. Symlinks are followed. Entries that
// disappear while being inspected are skipped.
func (w *Watcher) Candidates(ctx context.Context) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("watch directory %s: %w", w.dir, err)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) && isNotDir(w.dir) {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, w.dir)
		}
		return nil, fmt.Errorf("reading watch directory %s: %w", w.dir, err)
	}

	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		if !w.accepts(entry.Name()) {
			continue
		}

		path := filepath.Join(w.dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			w.logger.WithError(err).WithField("file", entry.Name()).Debug("candidate vanished")
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		candidates = append(candidates, Candidate{Name: entry.Name(), Path: path})
	}
	return candidates, nil
}

func (w *Watcher) accepts(name string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	_, ok := w.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func normalizeExtensions(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}

func isNotDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
