package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/mind-chat/backend/internal/model/chat"
	"github.com/zhouzirui/mind-chat/backend/internal/model/journal"
	"github.com/zhouzirui/mind-chat/backend/internal/model/mood"
)

// Store keeps everything in process memory. Suitable for local runs and tests.
type Store struct {
	mu        sync.RWMutex
	exchanges map[string][]chat.Exchange
	moods     map[mood.Key]mood.Record
	notes     map[string][]journal.Note
}

// NewStore bootstraps an empty in-memory store.
func NewStore() *Store {
	return &Store{
		exchanges: make(map[string][]chat.Exchange),
		moods:     make(map[mood.Key]mood.Record),
		notes:     make(map[string][]journal.Note),
	}
}

// AppendChatExchange keeps per-user exchanges sorted by timestamp.
func (s *Store) AppendChatExchange(_ context.Context, exchange *chat.Exchange) error {
	if exchange.ID == "" {
		exchange.ID = uuid.NewString()
	}
	if exchange.Timestamp.IsZero() {
		exchange.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.exchanges[exchange.UserID], *exchange)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.Before(list[j].Timestamp)
	})
	s.exchanges[exchange.UserID] = list
	return nil
}

func (s *Store) CountMessagesSince(_ context.Context, userID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, ex := range s.exchanges[userID] {
		if !ex.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListChatHistory(_ context.Context, userID string, limit int) ([]chat.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.exchanges[userID]
	start := 0
	if limit > 0 && len(list) > limit {
		start = len(list) - limit
	}
	copied := make([]chat.Exchange, len(list)-start)
	copy(copied, list[start:])
	return copied, nil
}

func (s *Store) FindMoodByKey(_ context.Context, key mood.Key) (*mood.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.moods[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// UpsertMood replaces whatever is stored under the record's natural key.
func (s *Store) UpsertMood(_ context.Context, record *mood.Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.moods[record.Key()] = *record
	return nil
}

func (s *Store) FindMoodsByUserAndMonth(_ context.Context, userID string, year, month int) ([]mood.Record, error) {
	return s.filterMoods(func(r mood.Record) bool {
		return r.UserID == userID && r.Year == year && r.Month == month
	}), nil
}

func (s *Store) FindAllMoodsByUser(_ context.Context, userID string) ([]mood.Record, error) {
	return s.filterMoods(func(r mood.Record) bool { return r.UserID == userID }), nil
}

func (s *Store) filterMoods(keep func(mood.Record) bool) []mood.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]mood.Record, 0)
	for _, rec := range s.moods {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Day < b.Day
	})
	return out
}

func (s *Store) SaveNote(_ context.Context, note *journal.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.Timestamp.IsZero() {
		note.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[note.UserID] = append(s.notes[note.UserID], *note)
	return nil
}

func (s *Store) ListNotes(_ context.Context, userID, date string) ([]journal.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]journal.Note, 0, len(s.notes[userID]))
	for _, n := range s.notes[userID] {
		if date == "" || n.Date == date {
			out = append(out, n)
		}
	}
	return out, nil
}

// Close is a no-op; it exists to satisfy storage.Store.
func (s *Store) Close() error { return nil }
