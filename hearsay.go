// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package hearsay wires the audio ingestion pipeline together.
//
// A Service owns every long-lived dependency: the record store, the model
// clients, the structured extractor and the folder watcher. Components never
// reach for global state; they receive what they need from the Service.
package hearsay

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/hearsay/ai"
	"github.com/poiesic/hearsay/ai/openai"
	"github.com/poiesic/hearsay/config"
	"github.com/poiesic/hearsay/extraction"
	"github.com/poiesic/hearsay/ingestion"
	"github.com/poiesic/hearsay/storage"
	"github.com/poiesic/hearsay/storage/badger"
	"github.com/poiesic/hearsay/storage/sqlite"
	"github.com/poiesic/hearsay/watcher"
	"github.com/sirupsen/logrus"
)

// Service is the explicit context object shared by every command.
type Service struct {
	config    *config.Config
	store     storage.RecordRepository
	provider  ai.AIProvider
	extractor *extraction.Extractor
	watcher   *watcher.Watcher
	logger    logrus.FieldLogger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	store    storage.RecordRepository
	provider ai.AIProvider
	logger   logrus.FieldLogger
}

// WithStore uses store instead of opening the configured backend.
// The Service takes ownership and closes it.
func WithStore(store storage.RecordRepository) ServiceOption {
	return func(o *serviceOptions) {
		o.store = store
	}
}

// WithProvider uses provider instead of building clients from the config.
// The Service takes ownership and closes it.
func WithProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger logrus.FieldLogger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService builds every dependency described by cfg. A store that cannot
// be opened is fatal and reported as storage.ErrStorageUnavailable.
func NewService(ctx context.Context, cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &serviceOptions{
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	store := options.store
	if store == nil {
		opened, err := OpenStore(ctx, cfg.Store, logger)
		if err != nil {
			return nil, err
		}
		store = opened
	}

	provider := options.provider
	if provider == nil {
		built, err := openai.NewProvider(cfg.AIConfig(), logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("ai provider: %w", err)
		}
		provider = built
	}

	extractor, err := extraction.New(provider.ChatClient(), cfg.Extraction.Model,
		extraction.WithMaxAttempts(cfg.Extraction.MaxAttempts),
		extraction.WithLogger(logger))
	if err != nil {
		provider.Close()
		store.Close()
		return nil, fmt.Errorf("extractor: %w", err)
	}

	w, err := watcher.New(cfg.Watch.Folder,
		watcher.WithExtensions(cfg.Watch.Extensions...),
		watcher.WithLogger(logger))
	if err != nil {
		provider.Close()
		store.Close()
		return nil, fmt.Errorf("watcher: %w", err)
	}

	return &Service{
		config:    cfg,
		store:     store,
		provider:  provider,
		extractor: extractor,
		watcher:   w,
		logger:    logger.WithField("component", "service"),
	}, nil
}

// OpenStore opens the backend named by cfg. SQLite stores are migrated on open.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger logrus.FieldLogger) (storage.RecordRepository, error) {
	switch cfg.Backend {
	case config.StoreBadger:
		return badger.Open(cfg.Path, false, logger)
	case config.StoreSQLite, "":
		return sqlite.Open(ctx, cfg.Path, sqlite.WithLogger(logger))
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", storage.ErrStorageUnavailable, cfg.Backend)
	}
}

// Close releases the provider and then the store.
func (s *Service) Close() error {
	var errs []error
	if err := s.provider.Close(); err != nil {
		s.logger.WithError(err).Error("error closing AI provider")
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		s.logger.WithError(err).Error("error closing record store")
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *config.Config {
	return s.config
}

// Store returns the record store.
func (s *Service) Store() storage.RecordRepository {
	return s.store
}

// Provider returns the model client provider.
func (s *Service) Provider() ai.AIProvider {
	return s.provider
}

// Extractor returns the structured extractor.
func (s *Service) Extractor() *extraction.Extractor {
	return s.extractor
}

// Watcher returns the folder watcher.
func (s *Service) Watcher() *watcher.Watcher {
	return s.watcher
}

// NewPipeline builds an ingestion pipeline from the configured watch settings.
// opts are applied after the configured ones. The caller must Release it.
func (s *Service) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	watch := s.config.Watch
	base := []ingestion.Option{
		ingestion.WithPollInterval(watch.PollIntervalDuration()),
		ingestion.WithFileTimeout(watch.FileTimeoutDuration()),
		ingestion.WithArchiveDir(watch.ArchiveFolder),
		ingestion.WithLogger(s.logger),
	}
	return ingestion.NewPipeline(s.store, s.provider.Transcriber(), s.extractor, s.watcher, append(base, opts...)...)
}
