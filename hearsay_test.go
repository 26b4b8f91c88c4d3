package hearsay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/hearsay/ai/mock"
	"github.com/poiesic/hearsay/config"
	"github.com/poiesic/hearsay/core"
	"github.com/poiesic/hearsay/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Watch.Folder = filepath.Join(dir, "inbox")
	cfg.Watch.PollInterval = "20ms"
	cfg.Store.Backend = backend
	cfg.Store.Path = filepath.Join(dir, "store", "hearsay."+backend)
	require.NoError(t, os.MkdirAll(cfg.Watch.Folder, 0o755))
	require.NoError(t, cfg.Validate())
	return cfg
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func TestNewService(t *testing.T) {
	for _, backend := range config.StoreBackends {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			svc, err := NewService(context.Background(), cfg,
				WithProvider(mock.NewMockProvider()),
				WithLogger(quietLogger()))
			require.NoError(t, err)
			defer svc.Close()

			assert.NotNil(t, svc.Store())
			assert.NotNil(t, svc.Provider())
			assert.NotNil(t, svc.Extractor())
			assert.Equal(t, cfg.Watch.Folder, svc.Watcher().Dir())
			assert.Same(t, cfg, svc.Config())
		})
	}
}

func TestNewServiceBuildsRealProvider(t *testing.T) {
	cfg := testConfig(t, config.StoreSQLite)
	svc, err := NewService(context.Background(), cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer svc.Close()

	assert.NotNil(t, svc.Provider().Transcriber())
	assert.NotNil(t, svc.Provider().ChatClient())
}

func TestNewServiceStoreUnavailable(t *testing.T) {
	cfg := testConfig(t, config.StoreSQLite)
	// A directory where the database file should be
	require.NoError(t, os.MkdirAll(cfg.Store.Path, 0o755))

	svc, err := NewService(context.Background(), cfg, WithProvider(mock.NewMockProvider()))
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
	assert.Nil(t, svc)
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), config.StoreConfig{Backend: "postgres"}, quietLogger())
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}

func TestServicePipelineEndToEnd(t *testing.T) {
	cfg := testConfig(t, config.StoreSQLite)
	cfg.Watch.ArchiveFolder = filepath.Join(t.TempDir(), "archive")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Watch.Folder, "note1.wav"), []byte("RIFF"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Watch.Folder, "ignored.txt"), []byte("x"), 0o644))

	chat := mock.NewStaticChatClient(`Sure, here you go: {"intent":"REQUEST_SUPPORT","entities":[{"text":"router","label":"DEVICE"}]}`)
	provider := mock.NewMockProviderWithServices(mock.NewMockTranscriber(), chat)

	svc, err := NewService(context.Background(), cfg, WithProvider(provider), WithLogger(quietLogger()))
	require.NoError(t, err)
	defer svc.Close()

	pipeline, err := svc.NewPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	submitted, err := pipeline.Tick(context.Background())
	require.NoError(t, err)
	require.True(t, submitted)
	pipeline.Wait()

	records, err := svc.Store().ListRecords(context.Background(), storage.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "note1.wav", records[0].OriginalFilename)
	assert.Equal(t, core.StatusUnresolved, records[0].Status)
	assert.Equal(t, core.IntentRequestSupport, records[0].Intent)
	assert.Equal(t, []core.Entity{{Text: "router", Label: "DEVICE"}}, records[0].Entities)

	assert.FileExists(t, filepath.Join(cfg.Watch.ArchiveFolder, "note1.wav"))
	assert.Equal(t, 1, provider.GetMockTranscriber().CallCount())
}

func TestServiceClose(t *testing.T) {
	cfg := testConfig(t, config.StoreBadger)
	svc, err := NewService(context.Background(), cfg, WithProvider(mock.NewMockProvider()), WithLogger(quietLogger()))
	require.NoError(t, err)

	require.NoError(t, svc.Close())
	_, err = svc.Store().Exists(context.Background(), "x.wav")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
