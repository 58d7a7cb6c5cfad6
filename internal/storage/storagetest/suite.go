// Package storagetest holds behaviour tests every storage.Store backend must pass.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mind-chat/backend/internal/model/chat"
	"github.com/zhouzirui/mind-chat/backend/internal/model/journal"
	"github.com/zhouzirui/mind-chat/backend/internal/model/mood"
	"github.com/zhouzirui/mind-chat/backend/internal/storage"
)

// Run executes the suite; open must return a fresh, empty store.
func Run(t *testing.T, open func(t *testing.T) storage.Store) {
	t.Run("ChatLog", func(t *testing.T) { testChatLog(t, open(t)) })
	t.Run("ChatHistoryLimit", func(t *testing.T) { testChatHistoryLimit(t, open(t)) })
	t.Run("MoodUpsert", func(t *testing.T) { testMoodUpsert(t, open(t)) })
	t.Run("MoodQueries", func(t *testing.T) { testMoodQueries(t, open(t)) })
	t.Run("Notes", func(t *testing.T) { testNotes(t, open(t)) })
}

var base = time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC)

func testChatLog(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for i, ts := range []time.Time{base.Add(-time.Hour), base, base.Add(3 * time.Hour)} {
		ex := &chat.Exchange{UserID: "u1", Message: fmt.Sprintf("m%d", i), Response: "r", Timestamp: ts}
		require.NoError(t, s.AppendChatExchange(ctx, ex))
		assert.NotEmpty(t, ex.ID)
	}
	require.NoError(t, s.AppendChatExchange(ctx, &chat.Exchange{UserID: "u2", Message: "x", Timestamp: base}))

	n, err := s.CountMessagesSince(ctx, "u1", base)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "the lower bound is inclusive")

	n, err = s.CountMessagesSince(ctx, "nobody", base)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testChatHistoryLimit(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		require.NoError(t, s.AppendChatExchange(ctx, &chat.Exchange{
			UserID: "u1", Message: fmt.Sprintf("m%d", i), Response: "r",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	last, err := s.ListChatHistory(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, last, 3)
	assert.Equal(t, []string{"m4", "m5", "m6"}, messages(last))
	assert.True(t, last[0].Timestamp.Equal(base.Add(4*time.Minute)))

	all, err := s.ListChatHistory(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 7)
	assert.Equal(t, "m0", all[0].Message)

	none, err := s.ListChatHistory(ctx, "u2", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func messages(list []chat.Exchange) []string {
	out := make([]string, len(list))
	for i, ex := range list {
		out[i] = ex.Message
	}
	return out
}

func testMoodUpsert(t *testing.T, s storage.Store) {
	ctx := context.Background()
	key := mood.Key{UserID: "u1", Year: 2025, Month: 5, Day: 28}

	got, err := s.FindMoodByKey(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	rec := &mood.Record{UserID: "u1", Year: 2025, Month: 5, Day: 28, Main: mood.Good, Sub: mood.Calm, Lang: "en"}
	require.NoError(t, s.UpsertMood(ctx, rec))
	require.NotEmpty(t, rec.ID)

	update := *rec
	update.Main, update.Sub, update.Lang = mood.Bad, mood.Lonely, "ru"
	require.NoError(t, s.UpsertMood(ctx, &update))

	got, err = s.FindMoodByKey(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, mood.Bad, got.Main)
	assert.Equal(t, mood.Lonely, got.Sub)
	assert.Equal(t, "ru", got.Lang)

	all, err := s.FindAllMoodsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testMoodQueries(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for _, d := range []struct{ y, m, day int }{{2025, 5, 20}, {2025, 4, 30}, {2025, 5, 2}, {2024, 12, 31}} {
		require.NoError(t, s.UpsertMood(ctx, &mood.Record{
			UserID: "u1", Year: d.y, Month: d.m, Day: d.day, Main: mood.Neutral, Sub: mood.Tired,
		}))
	}
	require.NoError(t, s.UpsertMood(ctx, &mood.Record{UserID: "u2", Year: 2025, Month: 5, Day: 1, Main: mood.Best, Sub: mood.Proud}))

	may, err := s.FindMoodsByUserAndMonth(ctx, "u1", 2025, 5)
	require.NoError(t, err)
	require.Len(t, may, 2)
	assert.Equal(t, 2, may[0].Day)
	assert.Equal(t, 20, may[1].Day)

	all, err := s.FindAllMoodsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 2024, all[0].Year)

	empty, err := s.FindMoodsByUserAndMonth(ctx, "u1", 2025, 6)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testNotes(t *testing.T, s storage.Store) {
	ctx := context.Background()
	for i, date := range []string{"2025-05-27", "2025-05-28", "2025-05-28"} {
		n := &journal.Note{UserID: "u1", Content: fmt.Sprintf("note %d", i), Date: date, Timestamp: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, s.SaveNote(ctx, n))
		assert.NotEmpty(t, n.ID)
	}

	all, err := s.ListNotes(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "note 0", all[0].Content)

	day, err := s.ListNotes(ctx, "u1", "2025-05-28")
	require.NoError(t, err)
	assert.Len(t, day, 2)

	other, err := s.ListNotes(ctx, "u2", "")
	require.NoError(t, err)
	assert.Empty(t, other)
}
