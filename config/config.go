// Package config loads hearsay settings from defaults, an optional TOML
// file and HEARSAY_* environment variables, in that order of precedence
// (later wins). Command-line flags are applied on top by the caller, which
// then calls Validate.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/hearsay/ai"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultFile is read when no path is given and it exists in the working directory.
	DefaultFile = "hearsay.toml"

	StoreSQLite = "sqlite"
	StoreBadger = "badger"

	FormatText = "text"
	FormatJSON = "json"
)

// StoreBackends lists the supported record store backends.
var StoreBackends = []string{StoreSQLite, StoreBadger}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	EnvWatchFolder   = "HEARSAY_WATCH_FOLDER"
	EnvPollInterval  = "HEARSAY_POLL_INTERVAL"
	EnvExtensions    = "HEARSAY_EXTENSIONS"
	EnvArchiveFolder = "HEARSAY_ARCHIVE_FOLDER"
	EnvFileTimeout   = "HEARSAY_FILE_TIMEOUT"

	EnvStoreBackend = "HEARSAY_STORE_BACKEND"
	EnvStorePath    = "HEARSAY_STORE_PATH"

	EnvTranscriptionHost       = "HEARSAY_TRANSCRIPTION_HOST"
	EnvTranscriptionModel      = "HEARSAY_TRANSCRIPTION_MODEL"
	EnvTranscriptionAPIKey     = "HEARSAY_TRANSCRIPTION_API_KEY"
	EnvTranscriptionMaxElapsed = "HEARSAY_TRANSCRIPTION_MAX_ELAPSED"

	EnvExtractionBackend     = "HEARSAY_EXTRACTION_BACKEND"
	EnvExtractionHost        = "HEARSAY_EXTRACTION_HOST"
	EnvExtractionModel       = "HEARSAY_EXTRACTION_MODEL"
	EnvExtractionAPIKey      = "HEARSAY_EXTRACTION_API_KEY"
	EnvExtractionMaxAttempts = "HEARSAY_EXTRACTION_MAX_ATTEMPTS"

	EnvLogLevel  = "HEARSAY_LOG_LEVEL"
	EnvLogFormat = "HEARSAY_LOG_FORMAT"
)

// Config is the root configuration.
type Config struct {
	Watch         WatchConfig         `toml:"watch"`
	Store         StoreConfig         `toml:"store"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Extraction    ExtractionConfig    `toml:"extraction"`
	Log           LogConfig           `toml:"log"`
}

// Duration is a configured time span: a Go duration string such as "1m30s",
// or a bare integer number of seconds. TOML integers decode as seconds.
type Duration string

// UnmarshalText keeps the raw TOML value so both strings and integers decode.
func (d *Duration) UnmarshalText(text []byte) error {
	*d = Duration(strings.TrimSpace(string(text)))
	return nil
}

// Parse converts d to a time.Duration.
func (d Duration) Parse() (time.Duration, error) {
	s := strings.TrimSpace(string(d))
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// WatchConfig controls the polling loop.
type WatchConfig struct {
	Folder        string   `toml:"folder"`
	PollInterval  Duration `toml:"poll_interval"`
	Extensions    []string `toml:"extensions"`
	ArchiveFolder string   `toml:"archive_folder"`
	FileTimeout   Duration `toml:"file_timeout"`
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *WatchConfig) PollIntervalDuration() time.Duration {
	d, _ := c.PollInterval.Parse()
	return d
}

// FileTimeoutDuration returns FileTimeout as a time.Duration.
func (c *WatchConfig) FileTimeoutDuration() time.Duration {
	d, _ := c.FileTimeout.Parse()
	return d
}

// StoreConfig selects and locates the record store.
type StoreConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// TranscriptionConfig addresses the speech-to-text service.
type TranscriptionConfig struct {
	Host       string `toml:"host"`
	Model      string `toml:"model"`
	APIKey     string `toml:"api_key"`
	MaxElapsed Duration `toml:"max_elapsed"`
}

// MaxElapsedDuration returns MaxElapsed as a time.Duration.
func (c *TranscriptionConfig) MaxElapsedDuration() time.Duration {
	d, _ := c.MaxElapsed.Parse()
	return d
}

// ExtractionConfig addresses the chat model used for structured extraction.
type ExtractionConfig struct {
	Backend     string `toml:"backend"`
	Host        string `toml:"host"`
	Model       string `toml:"model"`
	APIKey      string `toml:"api_key"`
	MaxAttempts int    `toml:"max_attempts"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Load reads path (or DefaultFile if path is empty and the file exists),
// fills defaults, applies environment overrides and validates the result.
// Without any file, defaults and environment provide all configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.loadDefaults()
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	cfg.loadDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration holding only default values.
func Default() *Config {
	cfg := &Config{}
	cfg.loadDefaults()
	cfg.loadDerivedDefaults()
	return cfg
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) loadDefaults() {
	if c.Watch.Folder == "" {
		c.Watch.Folder = "audio_files"
	}
	if c.Watch.PollInterval == "" {
		c.Watch.PollInterval = "10s"
	}
	// nil means unset; an explicit empty list accepts every file
	if c.Watch.Extensions == nil {
		c.Watch.Extensions = []string{".wav", ".mp3", ".m4a", ".flac"}
	}
	if c.Watch.FileTimeout == "" {
		c.Watch.FileTimeout = "10m"
	}

	if c.Store.Backend == "" {
		c.Store.Backend = StoreSQLite
	}

	defaults := ai.DefaultConfig()
	if c.Transcription.Host == "" {
		c.Transcription.Host = defaults.TranscriptionHost
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaults.TranscriptionModel
	}
	if c.Transcription.MaxElapsed == "" {
		c.Transcription.MaxElapsed = Duration(defaults.TranscriptionMaxElapsed.String())
	}
	if c.Extraction.Backend == "" {
		c.Extraction.Backend = defaults.ChatBackend
	}
	if c.Extraction.Host == "" {
		c.Extraction.Host = defaults.ChatHost
	}
	if c.Extraction.Model == "" {
		c.Extraction.Model = defaults.ChatModel
	}
	if c.Extraction.MaxAttempts == 0 {
		c.Extraction.MaxAttempts = 3
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = FormatText
	}
}

// loadDerivedDefaults fills values that depend on other settings.
func (c *Config) loadDerivedDefaults() {
	if c.Store.Path == "" {
		switch c.Store.Backend {
		case StoreBadger:
			c.Store.Path = "hearsay.badger"
		default:
			c.Store.Path = "hearsay.db"
		}
	}
}

func (c *Config) loadEnv() error {
	setString(&c.Watch.Folder, EnvWatchFolder)
	setString(&c.Watch.PollInterval, EnvPollInterval)
	if v, ok := os.LookupEnv(EnvExtensions); ok {
		c.Watch.Extensions = splitList(v)
	}
	setString(&c.Watch.ArchiveFolder, EnvArchiveFolder)
	setString(&c.Watch.FileTimeout, EnvFileTimeout)

	setString(&c.Store.Backend, EnvStoreBackend)
	setString(&c.Store.Path, EnvStorePath)

	setString(&c.Transcription.Host, EnvTranscriptionHost)
	setString(&c.Transcription.Model, EnvTranscriptionModel)
	setString(&c.Transcription.APIKey, EnvTranscriptionAPIKey)
	setString(&c.Transcription.MaxElapsed, EnvTranscriptionMaxElapsed)

	setString(&c.Extraction.Backend, EnvExtractionBackend)
	setString(&c.Extraction.Host, EnvExtractionHost)
	setString(&c.Extraction.Model, EnvExtractionModel)
	setString(&c.Extraction.APIKey, EnvExtractionAPIKey)
	if v := os.Getenv(EnvExtractionMaxAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvExtractionMaxAttempts, err)
		}
		c.Extraction.MaxAttempts = n
	}

	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Log.Format, EnvLogFormat)
	return nil
}

// Validate checks required fields and ranges. Call it again after applying
// flag overrides.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Watch.Folder) == "" {
		return fmt.Errorf("%w: watch.folder is required", ErrInvalidConfig)
	}
	if err := positiveDuration("watch.poll_interval", c.Watch.PollInterval); err != nil {
		return err
	}
	if err := positiveDuration("watch.file_timeout", c.Watch.FileTimeout); err != nil {
		return err
	}
	if !slices.Contains(StoreBackends, c.Store.Backend) {
		return fmt.Errorf("%w: store.backend must be one of %s", ErrInvalidConfig, strings.Join(StoreBackends, ", "))
	}
	if c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required", ErrInvalidConfig)
	}
	if err := positiveDuration("transcription.max_elapsed", c.Transcription.MaxElapsed); err != nil {
		return err
	}
	if c.Extraction.MaxAttempts < 1 {
		return fmt.Errorf("%w: extraction.max_attempts must be at least 1", ErrInvalidConfig)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	if c.Log.Format != FormatText && c.Log.Format != FormatJSON {
		return fmt.Errorf("%w: log.format must be %s or %s", ErrInvalidConfig, FormatText, FormatJSON)
	}
	if err := c.AIConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AIConfig builds the model client configuration.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithTranscriptionHost(c.Transcription.Host),
		ai.WithTranscriptionModel(c.Transcription.Model),
		ai.WithTranscriptionMaxElapsed(c.Transcription.MaxElapsedDuration()),
		ai.WithChatBackend(c.Extraction.Backend),
		ai.WithChatHost(c.Extraction.Host),
		ai.WithChatModel(c.Extraction.Model),
		func(cfg *ai.Config) {
			cfg.TranscriptionAPIKey = c.Transcription.APIKey
			cfg.ChatAPIKey = c.Extraction.APIKey
		},
	)
}

func positiveDuration(name string, value Duration) error {
	d, err := value.Parse()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, name)
	}
	return nil
}

func setString[T ~string](dst *T, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = T(v)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
