// Package history keeps the recent-searches list: a bounded, newest-first
// list of past queries stored as one JSON value.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/internal/storage"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

// StorageKey is the key the list is stored under.
const StorageKey = "recentSearches"

// DefaultLimit is the number of entries kept.
const DefaultLimit = 5

// timestampLayout matches JavaScript's Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Entry is one past search. Entries are never modified once created.
type Entry struct {
	CaseType   string  `json:"case_type"`
	CaseNumber string  `json:"case_number"`
	Year       string  `json:"year"`
	Result     Summary `json:"result"`
	Timestamp  string  `json:"timestamp"`
}

// Summary is the part of a result kept in history.
type Summary struct {
	Status      string `json:"status"`
	NextHearing string `json:"next_hearing"`
}

// Label is the "<type> <number>/<year>" text shown in the list.
func (e Entry) Label() string {
	return fmt.Sprintf("%s %s/%s", e.CaseType, e.CaseNumber, e.Year)
}

// Time parses the timestamp; the zero time is returned if it is malformed.
func (e Entry) Time() time.Time {
	t, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// View displays the list. It is refreshed after every load and record.
type View interface {
	ShowRecent(entries []Entry)
}

// Store reads and writes the list through a storage.Store.
type Store struct {
	kv     storage.Store
	limit  int
	now    func() time.Time
	logger *logger.Logger

	mu   sync.Mutex
	view View
}

// NewStore creates a store keeping at most limit entries.
func NewStore(kv storage.Store, limit int, logger *logger.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		kv:     kv,
		limit:  limit,
		now:    time.Now,
		logger: logger,
	}
}

// SetView attaches the view refreshed on Load and Record.
func (s *Store) SetView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// Load reads the stored list and displays it unchanged.
func (s *Store) Load(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.readOrEmpty(ctx)
	s.show(entries)
	return entries
}

// Entries reads the stored list without touching the view.
func (s *Store) Entries(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readOrEmpty(ctx)
}

// Record prepends an entry for q and res, truncates the list to the limit,
// writes it back and refreshes the view. Nothing is written when the stored
// list cannot be read.
func (s *Store) Record(ctx context.Context, q lookup.Query, res *lookup.Result) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		CaseType:   q.CaseType,
		CaseNumber: q.CaseNumber,
		Year:       strconv.Itoa(q.FilingYear),
		Timestamp:  s.now().UTC().Format(timestampLayout),
	}
	if res != nil {
		entry.Result = Summary{Status: res.CaseStatus, NextHearing: res.NextHearingDate}
	}

	current, err := s.read(ctx)
	if err != nil {
		return []Entry{}, fmt.Errorf("failed to read recent searches: %w", err)
	}
	updated := make([]Entry, 0, s.limit)
	updated = append(updated, entry)
	updated = append(updated, current...)
	if len(updated) > s.limit {
		updated = updated[:s.limit]
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return current, fmt.Errorf("failed to encode recent searches: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		return current, fmt.Errorf("failed to save recent searches: %w", err)
	}

	s.show(updated)
	return updated, nil
}

// Select returns the entry at index i for populating the search form. It
// does not run a search.
func (s *Store) Select(ctx context.Context, i int) (Entry, bool) {
	entries := s.Entries(ctx)
	if i < 0 || i >= len(entries) {
		return Entry{}, false
	}
	return entries[i], true
}

// Clear removes the stored list.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("failed to clear recent searches: %w", err)
	}
	s.show(nil)
	return nil
}

// read treats absent or malformed data as an empty list. Only a failing
// storage backend is an error.
func (s *Store) read(ctx context.Context) ([]Entry, error) {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("Discarding malformed recent searches", "error", err)
		return []Entry{}, nil
	}
	if entries == nil {
		return []Entry{}, nil
	}
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	return entries, nil
}

func (s *Store) readOrEmpty(ctx context.Context) []Entry {
	entries, err := s.read(ctx)
	if err != nil {
		s.logger.Warn("Failed to read recent searches", "error", err)
		return []Entry{}
	}
	return entries
}

func (s *Store) show(entries []Entry) {
	if s.view == nil {
		return
	}
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	s.view.ShowRecent(cp)
}
