package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/hearsay/core"
	"github.com/poiesic/hearsay/storage/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/xuri/excelize/v2"
)

type harness struct {
	configPath string
	storePath  string
	dir        string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		dir:        dir,
		configPath: filepath.Join(dir, "hearsay.toml"),
		storePath:  filepath.Join(dir, "hearsay.db"),
	}
	content := fmt.Sprintf("[watch]\nfolder = %q\n\n[store]\nbackend = \"sqlite\"\npath = %q\n\n[log]\nlevel = \"warn\"\n",
		filepath.Join(dir, "inbox"), h.storePath)
	require.NoError(t, os.WriteFile(h.configPath, []byte(content), 0o644))
	return h
}

// run executes the app and returns its standard output.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}

	full := append([]string{"hearsay", "--config", h.configPath}, args...)
	err := app.RunContext(context.Background(), full)
	return out.String(), err
}

func (h *harness) seed(t *testing.T, filenames ...string) []*core.TranscriptionRecord {
	t.Helper()
	store, err := sqlite.Open(context.Background(), h.storePath, sqlite.WithLogger(logrus.New()))
	require.NoError(t, err)
	defer store.Close()

	var records []*core.TranscriptionRecord
	for _, name := range filenames {
		record := core.NewTranscriptionRecord(name, "text of "+name, "en", core.Extraction{
			Intent:   core.IntentRequestSupport,
			Entities: []core.Entity{{Text: "printer", Label: "DEVICE"}},
		})
		require.NoError(t, store.Create(context.Background(), record))
		records = append(records, record)
	}
	return records
}

func TestAppFlags(t *testing.T) {
	app := newApp()

	names := make(map[string]*cli.Command)
	for _, cmd := range app.Commands {
		names[cmd.Name] = cmd
	}
	for _, name := range []string{"watch", "process", "list", "resolve", "export", "migrate"} {
		assert.Contains(t, names, name)
	}

	var statusFlag *cli.StringFlag
	for _, flag := range names["resolve"].Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == "status" {
			statusFlag = f
		}
	}
	require.NotNil(t, statusFlag)
	assert.Equal(t, "resolved", statusFlag.Value)
}

func TestInvalidLogLevel(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "--log-level", "loud", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestMigrate(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")

	// Idempotent
	out, err = h.run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 1")
}

func TestListAndFilter(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "a.wav", "b.wav")

	out, err := h.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "FILENAME")
	assert.Contains(t, out, "a.wav")
	assert.Contains(t, out, "b.wav")

	out, err = h.run(t, "list", "--status", "resolved")
	require.NoError(t, err)
	assert.NotContains(t, out, "a.wav")

	out, err = h.run(t, "list", "--intent", "request support")
	require.NoError(t, err)
	assert.Contains(t, out, "a.wav")

	_, err = h.run(t, "list", "--intent", "COMPLAINT")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	h := newHarness(t)
	records := h.seed(t, "a.wav")
	id := records[0].ID

	out, err := h.run(t, "resolve", "--status", "in_progress", "--notes", "called back", id)
	require.NoError(t, err)
	assert.Contains(t, out, "status:    in_progress")
	assert.Contains(t, out, "notes:     called back")

	// Notes are kept when omitted
	out, err = h.run(t, "resolve", id)
	require.NoError(t, err)
	assert.Contains(t, out, "status:    resolved")
	assert.Contains(t, out, "notes:     called back")

	// An explicit empty value clears them
	out, err = h.run(t, "resolve", "--notes", "", id)
	require.NoError(t, err)
	assert.NotContains(t, out, "called back")

	_, err = h.run(t, "resolve", "--status", "unresolved", id)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	_, err = h.run(t, "resolve", "missing-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no record")

	_, err = h.run(t, "resolve")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "a.wav", "b.wav")
	path := filepath.Join(h.dir, "out", "report.xlsx")

	out, err := h.run(t, "export", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 records")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Transcriptions")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestProcessRequiresFile(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "process")
	assert.Error(t, err)
}
