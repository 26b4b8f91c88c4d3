package badger

import (
	"fmt"

	"github.com/poiesic/hearsay/core"
	"github.com/poiesic/hearsay/storage"
)

func marshalRecord(record *core.TranscriptionRecord) []byte {
	value := *record
	if value.Entities == nil {
		value.Entities = []core.Entity{}
	}
	value.Timestamp = value.Timestamp.UTC()

	buf := make([]byte, core.TranscriptionRecordMUS.Size(value))
	core.TranscriptionRecordMUS.Marshal(value, buf)
	return buf
}

func unmarshalRecord(data []byte) (*core.TranscriptionRecord, error) {
	record, _, err := core.TranscriptionRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: record: %w", storage.ErrSerializationFailed, err)
	}
	return &record, nil
}
