// Package storage declares the persistence contracts the core depends on.
package storage

import (
	"context"
	"time"

	"github.com/zhouzirui/mind-chat/backend/internal/model/chat"
	"github.com/zhouzirui/mind-chat/backend/internal/model/journal"
	"github.com/zhouzirui/mind-chat/backend/internal/model/mood"
)

// ChatLog persists completed chat turns.
type ChatLog interface {
	AppendChatExchange(ctx context.Context, exchange *chat.Exchange) error
	CountMessagesSince(ctx context.Context, userID string, since time.Time) (int, error)
	// ListChatHistory returns the newest limit exchanges in ascending time order.
	// limit <= 0 returns everything.
	ListChatHistory(ctx context.Context, userID string, limit int) ([]chat.Exchange, error)
}

// Moods persists mood records. FindMoodByKey returns (nil, nil) when absent.
type Moods interface {
	FindMoodByKey(ctx context.Context, key mood.Key) (*mood.Record, error)
	UpsertMood(ctx context.Context, record *mood.Record) error
	FindMoodsByUserAndMonth(ctx context.Context, userID string, year, month int) ([]mood.Record, error)
	FindAllMoodsByUser(ctx context.Context, userID string) ([]mood.Record, error)
}

// Notes persists journal notes. An empty date lists every note of the user.
type Notes interface {
	SaveNote(ctx context.Context, note *journal.Note) error
	ListNotes(ctx context.Context, userID, date string) ([]journal.Note, error)
}

// Store bundles every contract behind one backend.
type Store interface {
	ChatLog
	Moods
	Notes
	Close() error
}
