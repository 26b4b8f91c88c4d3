package badger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/hearsay/core"
	"github.com/poiesic/hearsay/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *RecordRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newRecord(filename string) *core.TranscriptionRecord {
	return core.NewTranscriptionRecord(filename, "please send someone to fix the boiler", "en", core.Extraction{
		Intent:   core.IntentScheduleMaintenance,
		Entities: []core.Entity{{Text: "boiler", Label: "EQUIPMENT"}},
	})
}

func notesPtr(s string) *string {
	return &s
}

func TestRecordBasics(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := newRecord("boiler.wav")
	require.NoError(t, repo.Create(ctx, record))

	exists, err := repo.Exists(ctx, "boiler.wav")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.OriginalFilename, got.OriginalFilename)
	assert.Equal(t, record.TranscribedText, got.TranscribedText)
	assert.Equal(t, core.IntentScheduleMaintenance, got.Intent)
	assert.Equal(t, record.Entities, got.Entities)
	assert.Equal(t, core.StatusUnresolved, got.Status)
	assert.True(t, record.Timestamp.Equal(got.Timestamp))

	byName, err := repo.GetRecordByFilename(ctx, "boiler.wav")
	require.NoError(t, err)
	assert.Equal(t, record.ID, byName.ID)
}

func TestRecordMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "nothing.wav")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.GetRecord(ctx, "nothing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.GetRecordByFilename(ctx, "nothing.wav")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordDuplicateFilename(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := newRecord("same.wav")
	require.NoError(t, repo.Create(ctx, first))

	err := repo.Create(ctx, newRecord("same.wav"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := repo.GetRecordByFilename(ctx, "same.wav")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestRecordConcurrentCreate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const writers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		duplicate int
		other     []error
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, newRecord("contended.wav"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, storage.ErrDuplicateKey):
				duplicate++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 1, created)
	assert.Equal(t, writers-1, duplicate)
}

func TestRecordCreateRejectsNonUnresolved(t *testing.T) {
	repo := newTestRepo(t)

	record := newRecord("progress.wav")
	record.Status = core.StatusInProgress
	err := repo.Create(context.Background(), record)
	assert.ErrorIs(t, err, storage.ErrInvalidRecordStatus)
}

func TestRecordList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, name := range []string{"a.wav", "b.wav", "c.wav", "d.wav"} {
		record := newRecord(name)
		record.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if i%2 == 1 {
			record.Intent = core.IntentOther
		}
		require.NoError(t, repo.Create(ctx, record))
	}

	all, err := repo.ListRecords(ctx, storage.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "d.wav", all[0].OriginalFilename)
	assert.Equal(t, "a.wav", all[3].OriginalFilename)

	others, err := repo.ListRecords(ctx, storage.RecordFilter{Intent: core.IntentOther})
	require.NoError(t, err)
	require.Len(t, others, 2)
	assert.Equal(t, "d.wav", others[0].OriginalFilename)
	assert.Equal(t, "b.wav", others[1].OriginalFilename)

	limited, err := repo.ListRecords(ctx, storage.RecordFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "d.wav", limited[0].OriginalFilename)
}

func TestRecordAdvanceStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := newRecord("lifecycle.wav")
	require.NoError(t, repo.Create(ctx, record))

	updated, err := repo.AdvanceStatus(ctx, record.ID, core.StatusResolved, notesPtr("done"))
	require.NoError(t, err)
	assert.Equal(t, core.StatusResolved, updated.Status)
	assert.Equal(t, "done", updated.ResolutionNotes)

	_, err = repo.AdvanceStatus(ctx, record.ID, core.StatusInProgress, notesPtr("reopen"))
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	got, err := repo.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusResolved, got.Status)
	assert.Equal(t, "done", got.ResolutionNotes)

	_, err = repo.AdvanceStatus(ctx, "missing", core.StatusResolved, nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordAdvanceStatusKeepsNotes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := newRecord("notes.wav")
	require.NoError(t, repo.Create(ctx, record))

	_, err := repo.AdvanceStatus(ctx, record.ID, core.StatusInProgress, notesPtr("called back"))
	require.NoError(t, err)

	updated, err := repo.AdvanceStatus(ctx, record.ID, core.StatusResolved, nil)
	require.NoError(t, err)
	assert.Equal(t, core.StatusResolved, updated.Status)
	assert.Equal(t, "called back", updated.ResolutionNotes)

	got, err := repo.GetRecord(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "called back", got.ResolutionNotes)

	updated, err = repo.AdvanceStatus(ctx, record.ID, core.StatusResolved, notesPtr(""))
	require.NoError(t, err)
	assert.Empty(t, updated.ResolutionNotes)
}

func TestRecordValueRoundTrip(t *testing.T) {
	record := newRecord("codec.wav")
	record.Timestamp = time.Date(2025, 3, 4, 5, 6, 7, 891011, time.UTC)
	record.Entities = append(record.Entities, core.Entity{Text: "3rd floor", Label: "LOCATION"})
	record.ResolutionNotes = "ticket 42"

	got, err := unmarshalRecord(marshalRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, got)

	record.Entities = nil
	got, err = unmarshalRecord(marshalRecord(record))
	require.NoError(t, err)
	assert.NotNil(t, got.Entities)
	assert.Empty(t, got.Entities)
}

func TestRecordValueTruncated(t *testing.T) {
	data := marshalRecord(newRecord("short.wav"))

	_, err := unmarshalRecord(data[:len(data)/2])
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
}
