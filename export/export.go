// Package export writes stored transcription records to an xlsx workbook
// for review outside the pipeline.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/hearsay/core"
	"github.com/xuri/excelize/v2"
)

const (
	RecordsSheet = "Transcriptions"
	SummarySheet = "Intents"
)

var recordHeader = []any{
	"ID", "Filename", "Timestamp", "Status", "Intent", "Entities", "Language", "Text", "Resolution Notes",
}

// Write renders records as a workbook to w. The first sheet holds one row
// per record in the given order; the second counts records per intent.
func Write(w io.Writer, records []*core.TranscriptionRecord) error {
	f, err := build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile renders records to a workbook at path, creating parent directories.
func WriteFile(path string, records []*core.TranscriptionRecord) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}

	f, err := build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func build(records []*core.TranscriptionRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRecords(f, records); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, records); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeRecords(f *excelize.File, records []*core.TranscriptionRecord) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(RecordsSheet, "A1", &recordHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(recordHeader), 1)
	if err := f.SetCellStyle(RecordsSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.ID,
			r.OriginalFilename,
			r.Timestamp.UTC().Format(time.RFC3339),
			string(r.Status),
			string(r.Intent),
			formatEntities(r.Entities),
			r.Language,
			r.TranscribedText,
			r.ResolutionNotes,
		}
		if err := f.SetSheetRow(RecordsSheet, cell, &row); err != nil {
			return fmt.Errorf("write row for %s: %w", r.OriginalFilename, err)
		}
	}

	// Keep the header visible while scrolling
	return f.SetPanes(RecordsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(f *excelize.File, records []*core.TranscriptionRecord) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	counts := make(map[core.Intent]int)
	for _, r := range records {
		counts[r.Intent]++
	}

	header := []any{"Intent", "Records"}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return err
	}
	labels := append(append([]core.Intent{}, core.Intents...), core.IntentUnknown)
	for i, intent := range labels {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{string(intent), counts[intent]}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func formatEntities(entities []core.Entity) string {
	parts := make([]string, len(entities))
	for i, e := range entities {
		parts[i] = fmt.Sprintf("%s (%s)", e.Text, e.Label)
	}
	return strings.Join(parts, "; ")
}
