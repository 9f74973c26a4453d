package history

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/internal/storage"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

type recordingView struct {
	shown [][]Entry
}

func (v *recordingView) ShowRecent(entries []Entry) {
	v.shown = append(v.shown, entries)
}

func (v *recordingView) last() []Entry {
	if len(v.shown) == 0 {
		return nil
	}
	return v.shown[len(v.shown)-1]
}

type failingStore struct{ storage.Store }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk on fire")
}

// flakyStore fails the next failGets reads.
type flakyStore struct {
	storage.Store
	failGets int
}

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGets > 0 {
		f.failGets--
		return "", false, errors.New("connection reset")
	}
	return f.Store.Get(ctx, key)
}

func newStore(kv storage.Store) (*Store, *recordingView) {
	s := NewStore(kv, DefaultLimit, logger.NewNop())
	s.now = func() time.Time { return time.Date(2024, 8, 1, 10, 30, 0, 0, time.UTC) }
	v := &recordingView{}
	s.SetView(v)
	return s, v
}

func query(n int) lookup.Query {
	return lookup.Query{CaseType: "Criminal", CaseNumber: strconv.Itoa(n), FilingYear: 2023}
}

func TestRecordKeepsNewestFirstAndBounded(t *testing.T) {
	ctx := context.Background()
	s, view := newStore(storage.NewMemoryStore())

	for i := 1; i <= 8; i++ {
		entries, err := s.Record(ctx, query(i), lookup.DemoResult(query(i)))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(entries), DefaultLimit)
		assert.Equal(t, strconv.Itoa(i), entries[0].CaseNumber)
	}

	entries := s.Entries(ctx)
	require.Len(t, entries, 5)
	for i, want := range []string{"8", "7", "6", "5", "4"} {
		assert.Equal(t, want, entries[i].CaseNumber)
	}
	assert.Equal(t, entries, view.last())
}

func TestRecordEntryShape(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(storage.NewMemoryStore())

	q := lookup.Query{CaseType: "Criminal", CaseNumber: "1234", FilingYear: 2023}
	entries, err := s.Record(ctx, q, lookup.DemoResult(q))
	require.NoError(t, err)

	assert.Equal(t, Entry{
		CaseType:   "Criminal",
		CaseNumber: "1234",
		Year:       "2023",
		Result:     Summary{Status: "Pending", NextHearing: "2024-08-25"},
		Timestamp:  "2024-08-01T10:30:00.000Z",
	}, entries[0])
	assert.Equal(t, "Criminal 1234/2023", entries[0].Label())
	assert.Equal(t, 2024, entries[0].Time().Year())
}

func TestLoadTreatsBadDataAsEmpty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		raw  *string
	}{
		{name: "absent"},
		{name: "malformed", raw: strPtr("{not json")},
		{name: "wrong shape", raw: strPtr(`{"case_type": "CRL"}`)},
		{name: "null", raw: strPtr("null")},
		{name: "empty", raw: strPtr("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemoryStore()
			if tt.raw != nil {
				require.NoError(t, kv.Set(ctx, StorageKey, *tt.raw))
			}
			s, view := newStore(kv)

			entries := s.Load(ctx)
			assert.Empty(t, entries)
			assert.NotNil(t, entries)
			require.Len(t, view.shown, 1)
			assert.Empty(t, view.last())
		})
	}
}

func TestLoadDoesNotModify(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	raw := `[{"case_type":"CRL","case_number":"1","year":"2020","result":{"status":"Disposed","next_hearing":""},"timestamp":"2024-01-01T00:00:00.000Z"}]`
	require.NoError(t, kv.Set(ctx, StorageKey, raw))

	s, _ := newStore(kv)
	entries := s.Load(ctx)
	require.Len(t, entries, 1)
	assert.Equal(t, "Disposed", entries[0].Result.Status)

	stored, _, _ := kv.Get(ctx, StorageKey)
	assert.Equal(t, raw, stored)
}

func TestRecordOverCorruptData(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, StorageKey, "garbage"))

	s, _ := newStore(kv)
	entries, err := s.Record(ctx, query(1), nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Summary{}, entries[0].Result)
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(storage.NewMemoryStore())
	_, _ = s.Record(ctx, query(1), nil)
	_, _ = s.Record(ctx, query(2), nil)

	e, ok := s.Select(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "1", e.CaseNumber)

	_, ok = s.Select(ctx, 2)
	assert.False(t, ok)
	_, ok = s.Select(ctx, -1)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s, view := newStore(storage.NewMemoryStore())
	_, _ = s.Record(ctx, query(1), nil)

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Entries(ctx))
	assert.Empty(t, view.last())
}

func TestStorageFailures(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(failingStore{Store: storage.NewMemoryStore()})

	assert.Empty(t, s.Load(ctx))
	_, err := s.Record(ctx, query(1), nil)
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }

func TestRecordKeepsHistoryOnReadError(t *testing.T) {
	ctx := context.Background()
	kv := &flakyStore{Store: storage.NewMemoryStore()}
	s, view := newStore(kv)

	for i := 1; i <= 4; i++ {
		_, err := s.Record(ctx, query(i), nil)
		require.NoError(t, err)
	}
	shown := len(view.shown)

	kv.failGets = 1
	_, err := s.Record(ctx, query(5), nil)
	require.Error(t, err)
	assert.Len(t, view.shown, shown)

	entries := s.Entries(ctx)
	require.Len(t, entries, 4)
	assert.Equal(t, "4", entries[0].CaseNumber)

	entries, err = s.Record(ctx, query(5), nil)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "5", entries[0].CaseNumber)
	assert.Equal(t, "1", entries[4].CaseNumber)
}
