package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/hearsay/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hearsay.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "audio_files", cfg.Watch.Folder)
	assert.Equal(t, 10*time.Second, cfg.Watch.PollIntervalDuration())
	assert.Equal(t, 10*time.Minute, cfg.Watch.FileTimeoutDuration())
	assert.Equal(t, []string{".wav", ".mp3", ".m4a", ".flac"}, cfg.Watch.Extensions)
	assert.Empty(t, cfg.Watch.ArchiveFolder)
	assert.Equal(t, StoreSQLite, cfg.Store.Backend)
	assert.Equal(t, "hearsay.db", cfg.Store.Path)
	assert.Equal(t, "whisper-1", cfg.Transcription.Model)
	assert.Equal(t, 2*time.Minute, cfg.Transcription.MaxElapsedDuration())
	assert.Equal(t, ai.ChatBackendOllama, cfg.Extraction.Backend)
	assert.Equal(t, "mistral:v0.3", cfg.Extraction.Model)
	assert.Equal(t, 3, cfg.Extraction.MaxAttempts)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, FormatText, cfg.Log.Format)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[watch]
folder = "/srv/inbox"
poll_interval = "30s"
extensions = ["wav"]
archive_folder = "/srv/done"

[store]
backend = "badger"

[extraction]
backend = "openai"
host = "https://api.openai.com"
model = "gpt-4o-mini"
max_attempts = 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/inbox", cfg.Watch.Folder)
	assert.Equal(t, 30*time.Second, cfg.Watch.PollIntervalDuration())
	assert.Equal(t, []string{"wav"}, cfg.Watch.Extensions)
	assert.Equal(t, "/srv/done", cfg.Watch.ArchiveFolder)
	assert.Equal(t, StoreBadger, cfg.Store.Backend)
	assert.Equal(t, "hearsay.badger", cfg.Store.Path)
	assert.Equal(t, 5, cfg.Extraction.MaxAttempts)

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "https://api.openai.com/v1", aiCfg.ChatHost)
	assert.Equal(t, "gpt-4o-mini", aiCfg.ChatModel)
}

func TestLoadEmptyExtensionsAcceptsAll(t *testing.T) {
	path := writeConfig(t, "[watch]\nextensions = []\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Watch.Extensions)
	assert.Empty(t, cfg.Watch.Extensions)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[watch]\nfolder = \"/from/file\"\n[log]\nlevel = \"warn\"\n")
	t.Setenv(EnvWatchFolder, "/from/env")
	t.Setenv(EnvExtensions, ".ogg, .opus")
	t.Setenv(EnvExtractionMaxAttempts, "7")
	t.Setenv(EnvTranscriptionAPIKey, "secret")
	t.Setenv(EnvStoreBackend, StoreBadger)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.Watch.Folder)
	assert.Equal(t, []string{".ogg", ".opus"}, cfg.Watch.Extensions)
	assert.Equal(t, 7, cfg.Extraction.MaxAttempts)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "hearsay.badger", cfg.Store.Path)
	assert.Equal(t, "secret", cfg.AIConfig().TranscriptionAPIKey)
}

func TestLoadSecondsValues(t *testing.T) {
	path := writeConfig(t, "[watch]\npoll_interval = 15\nfile_timeout = \"90\"\n[transcription]\nmax_elapsed = \"1m30s\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Watch.PollIntervalDuration())
	assert.Equal(t, 90*time.Second, cfg.Watch.FileTimeoutDuration())
	assert.Equal(t, 90*time.Second, cfg.Transcription.MaxElapsedDuration())

	t.Setenv(EnvPollInterval, "10")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Watch.PollIntervalDuration())

	_, err = Load(writeConfig(t, "[watch]\npoll_interval = 0\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestDurationParse(t *testing.T) {
	tests := []struct {
		in   Duration
		want time.Duration
		ok   bool
	}{
		{"10", 10 * time.Second, true},
		{" 5 ", 5 * time.Second, true},
		{"250ms", 250 * time.Millisecond, true},
		{"2m", 2 * time.Minute, true},
		{"-3", -3 * time.Second, true},
		{"soon", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := tt.in.Parse()
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[watch\nfolder="))
	assert.Error(t, err)

	t.Setenv(EnvExtractionMaxAttempts, "many")
	_, err = Load(writeConfig(t, ""))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty folder", func(c *Config) { c.Watch.Folder = "" }},
		{"bad poll interval", func(c *Config) { c.Watch.PollInterval = "soon" }},
		{"zero poll interval", func(c *Config) { c.Watch.PollInterval = "0s" }},
		{"negative file timeout", func(c *Config) { c.Watch.FileTimeout = "-1m" }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"zero attempts", func(c *Config) { c.Extraction.MaxAttempts = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad chat backend", func(c *Config) { c.Extraction.Backend = "bard" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}
