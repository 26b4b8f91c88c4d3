// Package ingestion turns audio files in a drop folder into stored
// transcription records.
//
// The Pipeline polls a candidate source on a fixed interval. Each tick hands
// the listed files to a single-slot worker, which processes them one at a
// time in listing order:
//   - files that already have a record are skipped
//   - the audio is transcribed; a failure leaves the file for the next tick
//   - the text is run through the structured extractor, which always yields a value
//   - one record is created; a duplicate filename means another writer won the race
//   - optionally the audio is moved to an archive folder
//
// A tick that finds the worker busy is skipped rather than queued, so at
// most one batch is ever in flight. Per-file work is detached from the
// caller's cancellation and bounded by a timeout, so shutdown waits for the
// current file instead of interrupting it mid-commit.
package ingestion
