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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/hearsay/core"
	"github.com/poiesic/hearsay/storage"
	"github.com/poiesic/hearsay/watcher"
	"github.com/sirupsen/logrus"
)

// Extractor produces a structured extraction for transcribed text.
// Implementations must always return a value; *extraction.Extractor falls
// back to core.FallbackExtraction when the model cannot be coerced.
type Extractor interface {
	Extract(ctx context.Context, text string) core.Extraction
}

// CandidateSource lists the files a tick should consider.
type CandidateSource interface {
	Candidates(ctx context.Context) ([]watcher.Candidate, error)
}

// Outcome is the terminal state of processing one file.
type Outcome int

const (
	// OutcomeSkipped means a record for the filename already existed.
	OutcomeSkipped Outcome = iota
	// OutcomeTranscriptionFailed means no text was produced; the file stays for the next tick.
	OutcomeTranscriptionFailed
	// OutcomeDuplicate means another writer created the record first.
	OutcomeDuplicate
	// OutcomePersistenceFailed means the store rejected the record for a reason other than a duplicate.
	OutcomePersistenceFailed
	// OutcomeCreated means a new record was committed.
	OutcomeCreated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeTranscriptionFailed:
		return "transcription_failed"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomePersistenceFailed:
		return "persistence_failed"
	case OutcomeCreated:
		return "created"
	}
	return "unknown"
}

// ProcessFile runs one candidate through the pipeline steps. It is safe to
// call directly, outside the polling loop.
//
// The work runs detached from ctx's cancellation and is bounded by the file
// timeout instead. Only ErrTranscription and ErrPersistence are returned;
// a duplicate is reported through the outcome with a nil error.
func (p *Pipeline) ProcessFile(ctx context.Context, candidate watcher.Candidate) (Outcome, error) {
	fileCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.fileTimeout)
	defer cancel()

	logger := p.logger.WithField("file", candidate.Name)
	start := time.Now()

	exists, err := p.store.Exists(fileCtx, candidate.Name)
	if err != nil {
		return OutcomePersistenceFailed, fmt.Errorf("%w: checking %s: %w", ErrPersistence, candidate.Name, err)
	}
	if exists {
		logger.Debug("record exists, skipping")
		return OutcomeSkipped, nil
	}

	transcription, err := p.transcriber.Transcribe(fileCtx, candidate.Path)
	if err != nil {
		return OutcomeTranscriptionFailed, fmt.Errorf("%w: %s: %w", ErrTranscription, candidate.Name, err)
	}
	logger.WithFields(logrus.Fields{
		"chars":    len(transcription.Text),
		"language": transcription.Language,
	}).Debug("transcribed")

	extraction := p.extractor.Extract(fileCtx, transcription.Text)
	record := core.NewTranscriptionRecord(candidate.Name, transcription.Text, transcription.Language, extraction)

	if err := p.store.Create(fileCtx, record); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			logger.Debug("record created by another writer")
			return OutcomeDuplicate, nil
		}
		return OutcomePersistenceFailed, fmt.Errorf("%w: %s: %w", ErrPersistence, candidate.Name, err)
	}

	logger.WithFields(logrus.Fields{
		"id":       record.ID,
		"intent":   record.Intent,
		"entities": len(record.Entities),
		"elapsed":  time.Since(start),
	}).Info("record created")

	if p.archiveDir != "" {
		// The record is already committed; a failed move only costs a skip next tick.
		if err := archive(candidate, p.archiveDir); err != nil {
			logger.WithError(err).Warn("failed to archive audio file")
		}
	}
	return OutcomeCreated, nil
}

// processBatch handles candidates in order until done or ctx is cancelled.
// Cancellation is only observed between files.
func (p *Pipeline) processBatch(ctx context.Context, candidates []watcher.Candidate) {
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			p.logger.Info("batch interrupted by shutdown")
			return
		}

		outcome, err := p.ProcessFile(ctx, candidate)
		if err != nil {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"file":    candidate.Name,
				"outcome": outcome.String(),
			}).Warn("file not processed")
		}
	}
}

func archive(candidate watcher.Candidate, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	return os.Rename(candidate.Path, filepath.Join(dir, candidate.Name))
}
