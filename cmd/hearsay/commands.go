package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/poiesic/hearsay"
	"github.com/poiesic/hearsay/config"
	"github.com/poiesic/hearsay/core"
	"github.com/poiesic/hearsay/export"
	"github.com/poiesic/hearsay/ingestion"
	"github.com/poiesic/hearsay/storage"
	"github.com/poiesic/hearsay/storage/sqlite"
	"github.com/poiesic/hearsay/watcher"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func watchCommand(c *cli.Context) error {
	cfg, log := runtimeFrom(c)

	if c.IsSet("folder") {
		cfg.Watch.Folder = c.String("folder")
	}
	if c.IsSet("interval") {
		cfg.Watch.PollInterval = config.Duration(c.Duration("interval").String())
	}
	if c.IsSet("archive") {
		cfg.Watch.ArchiveFolder = c.String("archive")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc, err := hearsay.NewService(c.Context, cfg, hearsay.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer svc.Close()

	pipeline, err := svc.NewPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	log.WithFields(logrus.Fields{
		"folder":     cfg.Watch.Folder,
		"interval":   cfg.Watch.PollInterval,
		"store":      cfg.Store.Backend,
		"store_path": cfg.Store.Path,
		"chat_model": cfg.Extraction.Model,
	}).Info("watching for audio files")

	return pipeline.Run(c.Context)
}

func processCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return exitUsage(c, "process takes exactly one file")
	}
	path := c.Args().First()
	cfg, log := runtimeFrom(c)

	svc, err := hearsay.NewService(c.Context, cfg, hearsay.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer svc.Close()

	pipeline, err := svc.NewPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	outcome, err := pipeline.ProcessFile(c.Context, watcher.Candidate{
		Name: filepath.Base(path),
		Path: path,
	})
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "%s: %s\n", filepath.Base(path), outcome)
	if outcome == ingestion.OutcomeCreated || outcome == ingestion.OutcomeSkipped || outcome == ingestion.OutcomeDuplicate {
		record, err := svc.Store().GetRecordByFilename(c.Context, filepath.Base(path))
		if err != nil {
			return err
		}
		printRecord(c, record)
	}
	return nil
}

func listCommand(c *cli.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListRecords(c.Context, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILENAME\tTIMESTAMP\tSTATUS\tINTENT\tENTITIES")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.OriginalFilename, r.Timestamp.Local().Format(time.DateTime), r.Status, r.Intent, len(r.Entities))
	}
	return tw.Flush()
}

func resolveCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return exitUsage(c, "resolve takes exactly one record id")
	}
	id := c.Args().First()

	status := core.Status(strings.ToLower(c.String("status")))
	if !status.Valid() {
		return fmt.Errorf("invalid status %q: must be one of %s, %s, %s",
			status, core.StatusUnresolved, core.StatusInProgress, core.StatusResolved)
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	var notes *string
	if c.IsSet("notes") {
		value := c.String("notes")
		notes = &value
	}

	record, err := store.AdvanceStatus(c.Context, id, status, notes)
	if err != nil {
		return recordError(id, err)
	}
	printRecord(c, record)
	return nil
}

func exportCommand(c *cli.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListRecords(c.Context, filter)
	if err != nil {
		return err
	}

	out := c.String("out")
	if err := export.WriteFile(out, records); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "exported %d records to %s\n", len(records), out)
	return nil
}

func migrateCommand(c *cli.Context) error {
	cfg, log := runtimeFrom(c)
	if cfg.Store.Backend != config.StoreSQLite {
		fmt.Fprintf(c.App.Writer, "%s store has no schema migrations\n", cfg.Store.Backend)
		return nil
	}

	store, err := sqlite.Open(c.Context, cfg.Store.Path, sqlite.WithLogger(log))
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Fprintf(c.App.Writer, "%s at schema version %d\n", cfg.Store.Path, store.SchemaVersion())
	return nil
}

func openStore(c *cli.Context) (storage.RecordRepository, error) {
	cfg, log := runtimeFrom(c)
	return hearsay.OpenStore(c.Context, cfg.Store, log)
}

func parseFilter(c *cli.Context) (storage.RecordFilter, error) {
	filter := storage.RecordFilter{Limit: c.Int("limit")}
	if filter.Limit < 0 {
		return filter, fmt.Errorf("limit must not be negative")
	}
	if s := c.String("status"); s != "" {
		filter.Status = core.Status(strings.ToLower(s))
		if !filter.Status.Valid() {
			return filter, fmt.Errorf("invalid status %q", s)
		}
	}
	if s := c.String("intent"); s != "" {
		intent, ok := core.ParseIntent(s)
		if !ok {
			return filter, fmt.Errorf("invalid intent %q", s)
		}
		filter.Intent = intent
	}
	return filter, nil
}

func recordError(id string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("no record with id %s", id)
	case errors.Is(err, core.ErrInvalidTransition):
		return fmt.Errorf("record %s: %w", id, err)
	}
	return err
}

func printRecord(c *cli.Context, r *core.TranscriptionRecord) {
	out := c.App.Writer
	fmt.Fprintf(out, "id:        %s\n", r.ID)
	fmt.Fprintf(out, "file:      %s\n", r.OriginalFilename)
	fmt.Fprintf(out, "timestamp: %s\n", r.Timestamp.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "status:    %s\n", r.Status)
	fmt.Fprintf(out, "intent:    %s\n", r.Intent)
	for _, e := range r.Entities {
		fmt.Fprintf(out, "entity:    %s (%s)\n", e.Text, e.Label)
	}
	if r.Language != "" {
		fmt.Fprintf(out, "language:  %s\n", r.Language)
	}
	if r.ResolutionNotes != "" {
		fmt.Fprintf(out, "notes:     %s\n", r.ResolutionNotes)
	}
	fmt.Fprintf(out, "text:      %s\n", r.TranscribedText)
}
