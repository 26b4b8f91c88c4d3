package storage

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/hearsay/core"
)

// MarshalEntities encodes entities as a JSON array of {text,label} objects.
// A nil slice encodes as "[]".
func MarshalEntities(entities []core.Entity) (string, error) {
	if entities == nil {
		entities = []core.Entity{}
	}
	data, err := json.Marshal(entities)
	if err != nil {
		return "", fmt.Errorf("%w: entities: %w", ErrSerializationFailed, err)
	}
	return string(data), nil
}

// UnmarshalEntities decodes the output of MarshalEntities.
// An empty string decodes to an empty slice.
func UnmarshalEntities(data string) ([]core.Entity, error) {
	entities := []core.Entity{}
	if data == "" {
		return entities, nil
	}
	if err := json.Unmarshal([]byte(data), &entities); err != nil {
		return nil, fmt.Errorf("%w: entities: %w", ErrSerializationFailed, err)
	}
	if entities == nil {
		entities = []core.Entity{}
	}
	return entities, nil
}
