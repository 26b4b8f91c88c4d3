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


// Package storage provides the storage abstraction layer for hearsay.
//
// RecordRepository decouples the ingestion pipeline from the backend that
// keeps transcription records. Two backends ship with hearsay:
//
//	repo, err := sqlite.Open(ctx, "/path/to/hearsay.db")  // default
//	repo, err := badger.Open("/path/to/badger", false)     // alternative
//
// Both return storage.RecordRepository.
//
// # Uniqueness
//
// At most one record exists per original filename. Exists is an
// optimization the pipeline uses to skip work early; Create is the
// authoritative gate and reports ErrDuplicateKey when a second writer
// loses the race.
//
// # Status Lifecycle
//
// Records are created unresolved. AdvanceStatus is the only mutation the
// store exposes and it refuses to move a record backward along
// unresolved -> in_progress -> resolved.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
