// Package logger builds the logrus logger shared by every component.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Options controls logger construction.
type Options struct {
	// Level is a logrus level name. Empty means info.
	Level string
	// Format is "text" or "json". Empty means text.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New builds a logger. Text output uses full RFC3339Nano timestamps;
// json output suits log shippers.
func New(opts Options) (*logrus.Logger, error) {
	base := logrus.New()

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	base.SetLevel(level)

	switch strings.ToLower(opts.Format) {
	case "", "text":
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	base.SetOutput(out)

	return base, nil
}
