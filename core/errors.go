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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecord indicates a TranscriptionRecord failed validation.
	ErrInvalidRecord = errors.New("invalid transcription record")

	// ErrEmptyFilename indicates the OriginalFilename field is empty.
	ErrEmptyFilename = errors.New("original filename cannot be empty")

	// ErrEmptyID indicates the ID field is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrInvalidIntent indicates an intent outside the closed label set.
	ErrInvalidIntent = errors.New("invalid intent")

	// ErrInvalidStatus indicates a status outside the lifecycle.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidTransition indicates a status change that would move the lifecycle backward.
	ErrInvalidTransition = errors.New("invalid status transition")
)
