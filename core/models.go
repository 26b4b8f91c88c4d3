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

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Intent is the closed set of labels an extraction may assign to a transcription.
type Intent string

const (
	IntentScheduleMaintenance Intent = "SCHEDULE_MAINTENANCE"
	IntentRequestSupport      Intent = "REQUEST_SUPPORT"
	IntentGeneralInquiry      Intent = "GENERAL_INQUIRY"
	IntentOther               Intent = "OTHER"
	// IntentUnknown is the sentinel used when extraction could not be validated.
	IntentUnknown Intent = "UNKNOWN"
)

// Intents lists the labels a model is allowed to choose from.
// IntentUnknown is deliberately absent: it is never offered to the model.
var Intents = []Intent{
	IntentScheduleMaintenance,
	IntentRequestSupport,
	IntentGeneralInquiry,
	IntentOther,
}

// intentAliases maps spellings seen in model output to canonical labels.
var intentAliases = map[string]Intent{
	"SCHEDULE_MAINTAINCE": IntentScheduleMaintenance,
}

// ParseIntent normalizes s and reports whether it names a known intent.
// IntentUnknown is accepted so stored records round-trip.
func ParseIntent(s string) (Intent, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "_")
	norm = strings.ReplaceAll(norm, "-", "_")
	if alias, ok := intentAliases[norm]; ok {
		return alias, true
	}
	switch Intent(norm) {
	case IntentScheduleMaintenance, IntentRequestSupport, IntentGeneralInquiry, IntentOther, IntentUnknown:
		return Intent(norm), true
	}
	return "", false
}

// Status tracks the resolution lifecycle of a record.
// The lifecycle is unresolved -> in_progress -> resolved and never regresses.
type Status string

const (
	StatusUnresolved Status = "unresolved"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// rank orders statuses along the lifecycle. Unknown statuses rank -1.
func (s Status) rank() int {
	switch s {
	case StatusUnresolved:
		return 0
	case StatusInProgress:
		return 1
	case StatusResolved:
		return 2
	}
	return -1
}

// Valid reports whether s is one of the lifecycle states.
func (s Status) Valid() bool {
	return s.rank() >= 0
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic.
// Staying in the same state is allowed so notes can be amended.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return next.rank() >= s.rank()
}

// Entity is a named span the extraction model found in the text.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Extraction is the validated structured summary of a transcription.
type Extraction struct {
	Intent   Intent   `json:"intent"`
	Entities []Entity `json:"entities"`
}

// FallbackExtraction returns the value used when a model response could not be
// coerced into an Extraction.
func FallbackExtraction() Extraction {
	return Extraction{
		Intent:   IntentUnknown,
		Entities: []Entity{},
	}
}

// IsFallback reports whether e is the fallback value.
func (e Extraction) IsFallback() bool {
	return e.Intent == IntentUnknown && len(e.Entities) == 0
}

// TranscriptionRecord is the durable outcome of processing one audio file.
type TranscriptionRecord struct {
	ID               string
	OriginalFilename string // Dedup key: at most one record per filename
	TranscribedText  string
	Language         string
	Intent           Intent
	Entities         []Entity
	Timestamp        time.Time
	Status           Status
	ResolutionNotes  string
}

// NewTranscriptionRecord builds a fresh unresolved record for filename.
func NewTranscriptionRecord(filename, text, language string, extraction Extraction) *TranscriptionRecord {
	entities := extraction.Entities
	if entities == nil {
		entities = []Entity{}
	}
	return &TranscriptionRecord{
		ID:               uuid.NewString(),
		OriginalFilename: filename,
		TranscribedText:  text,
		Language:         language,
		Intent:           extraction.Intent,
		Entities:         entities,
		Timestamp:        time.Now().UTC(),
		Status:           StatusUnresolved,
		ResolutionNotes:  "",
	}
}
