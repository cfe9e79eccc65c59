package history

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/sparqlconsole/internal/storage"
	"github.com/aleksaelezovic/sparqlconsole/pkg/store"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()
	s, err := storage.NewBadgerStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s)
}

func record(t *testing.T, h *History, dataset, query string) Entry {
	t.Helper()
	e, err := h.Record(Entry{Query: query, QueryType: "sparql", Dataset: dataset, Rows: 3})
	require.NoError(t, err)
	return e
}

func TestRecordAndGet(t *testing.T) {
	h := newTestHistory(t)

	e := record(t, h, "b3kat", "SELECT * WHERE { ?s ?p ?o }")
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, uuid.Version(7), e.ID.Version())
	assert.Equal(t, 1, e.RunCount)
	assert.WithinDuration(t, time.Now(), e.At, time.Minute)

	got, err := h.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Query, got.Query)
	assert.Equal(t, e.Dataset, got.Dataset)
	assert.True(t, e.At.Equal(got.At))

	_, err = h.Get(uuid.Must(uuid.NewV7()))
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestRecord_RepeatReplacesEntry(t *testing.T) {
	h := newTestHistory(t)

	first := record(t, h, "b3kat", "SELECT 1")
	record(t, h, "default", "SELECT 1")
	second := record(t, h, "b3kat", "SELECT 1")

	assert.Equal(t, 2, second.RunCount)
	assert.NotEqual(t, first.ID, second.ID)

	entries, err := h.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, "default", entries[1].Dataset)

	_, err = h.Get(first.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestList_NewestFirstWithLimit(t *testing.T) {
	h := newTestHistory(t)

	var ids []uuid.UUID
	for _, q := range []string{"q1", "q2", "q3", "q4"} {
		ids = append(ids, record(t, h, "default", q).ID)
	}

	entries, err := h.List(3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ids[3], entries[0].ID)
	assert.Equal(t, ids[2], entries[1].ID)
	assert.Equal(t, ids[1], entries[2].ID)
}

func TestList_Empty(t *testing.T) {
	entries, err := newTestHistory(t).List(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}

func TestPrune(t *testing.T) {
	h := newTestHistory(t)

	old := record(t, h, "default", "old")
	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(5 * time.Millisecond)
	recent := record(t, h, "default", "recent")

	n, err := h.Prune(cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = h.Get(old.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = h.Get(recent.ID)
	assert.NoError(t, err)

	// the index entry went with it, so a re-run starts counting again
	again := record(t, h, "default", "old")
	assert.Equal(t, 1, again.RunCount)
}

func TestPrune_Nothing(t *testing.T) {
	h := newTestHistory(t)
	record(t, h, "default", "q")

	n, err := h.Prune(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduler(t *testing.T) {
	h := newTestHistory(t)
	record(t, h, "default", "q")

	_, err := NewScheduler(h, "not a schedule", time.Hour)
	assert.Error(t, err)

	_, err = NewScheduler(h, "@hourly", 0)
	assert.Error(t, err)

	s, err := NewScheduler(h, "@every 1h", time.Millisecond)
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	time.Sleep(5 * time.Millisecond)
	s.RunOnce()

	entries, err := h.List(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
