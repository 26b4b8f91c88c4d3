package badger

import (
	"encoding/binary"
	"time"
)

// Key prefixes for different data types
const (
	recordPrefix         = "rec"
	recordFilenamePrefix = "recfn"
	recordTimePrefix     = "rects"
)

// makeRecordKey generates a key for a record by ID.
func makeRecordKey(id string) []byte {
	return []byte(recordPrefix + ":" + id)
}

// makeFilenameKey generates the uniqueness index key for an original filename.
// The value stored under it is the owning record's ID.
func makeFilenameKey(filename string) []byte {
	return []byte(recordFilenamePrefix + ":" + filename)
}

// makeTimeKey generates a composite key for the timestamp index.
// Format: prefix:timestamp:id
func makeTimeKey(timestamp time.Time, id string) []byte {
	prefix := []byte(recordTimePrefix + ":")
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// timeIndexPrefix returns the prefix shared by all timestamp index keys.
func timeIndexPrefix() []byte {
	return []byte(recordTimePrefix + ":")
}

// timeIndexEnd returns a key that sorts after every timestamp index key,
// used to seek a reverse iterator to the newest entry.
func timeIndexEnd() []byte {
	return append(timeIndexPrefix(), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
}
