package storage

import (
	"fmt"

	"github.com/poiesic/hearsay/core"
)

// ValidateNewRecord checks a record is fit to be created: it must pass domain
// validation and start its lifecycle unresolved.
func ValidateNewRecord(record *core.TranscriptionRecord) error {
	if err := core.ValidateTranscriptionRecord(record); err != nil {
		return err
	}
	if record.Status != core.StatusUnresolved {
		return fmt.Errorf("%w: got %q", ErrInvalidRecordStatus, record.Status)
	}
	return nil
}
