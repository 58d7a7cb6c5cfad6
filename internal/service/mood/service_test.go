package mood_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mind-chat/backend/internal/model/locale"
	model "github.com/zhouzirui/mind-chat/backend/internal/model/mood"
	moodservice "github.com/zhouzirui/mind-chat/backend/internal/service/mood"
	"github.com/zhouzirui/mind-chat/backend/internal/storage/memory"
)

var day = model.Key{UserID: "u1", Year: 2025, Month: 5, Day: 28}

func TestUpsertTwiceKeepsOneRecord(t *testing.T) {
	store := memory.NewStore()
	svc := moodservice.NewService(store, nil)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, day, "best", "proud", locale.English)
	require.NoError(t, err)
	second, err := svc.Upsert(ctx, day, "best", "proud", locale.English)
	require.NoError(t, err)

	all, err := store.FindAllMoodsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, model.Best, all[0].Main)
	assert.Equal(t, model.Proud, all[0].Sub)
}

func TestUpsertOverwritesInPlace(t *testing.T) {
	store := memory.NewStore()
	svc := moodservice.NewService(store, nil)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, day, "best", "proud", locale.English)
	require.NoError(t, err)
	second, err := svc.Upsert(ctx, day, "bad", "lonely", locale.Korean)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	got, err := store.FindMoodByKey(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, model.Bad, got.Main)
	assert.Equal(t, model.Lonely, got.Sub)
	assert.Equal(t, "ko", got.Lang)
}

func TestUpsertRejectsInvalidPair(t *testing.T) {
	store := memory.NewStore()
	svc := moodservice.NewService(store, nil)

	_, err := svc.Upsert(context.Background(), day, "best", "angry", locale.English)

	assert.ErrorIs(t, err, model.ErrInvalidPair)
	all, _ := store.FindAllMoodsByUser(context.Background(), "u1")
	assert.Empty(t, all)
}

func TestUpsertRejectsImpossibleDate(t *testing.T) {
	svc := moodservice.NewService(memory.NewStore(), nil)
	key := model.Key{UserID: "u1", Year: 2025, Month: 2, Day: 30}

	_, err := svc.Upsert(context.Background(), key, "good", "calm", locale.English)

	assert.ErrorIs(t, err, model.ErrInvalidDate)
}

type failingRepo struct {
	*memory.Store
	err error
}

func (f failingRepo) UpsertMood(context.Context, *model.Record) error { return f.err }

func TestUpsertSurfacesStorageErrors(t *testing.T) {
	boom := errors.New("disk full")
	svc := moodservice.NewService(failingRepo{Store: memory.NewStore(), err: boom}, nil)

	_, err := svc.Upsert(context.Background(), day, "good", "calm", locale.English)

	assert.ErrorIs(t, err, boom)
}

func TestConcurrentUpsertsKeepSingleRecord(t *testing.T) {
	store := memory.NewStore()
	svc := moodservice.NewService(store, nil)

	var wg sync.WaitGroup
	for _, pair := range model.Pairs() {
		wg.Add(1)
		go func(p model.Pair) {
			defer wg.Done()
			_, err := svc.Upsert(context.Background(), day, string(p.Main), string(p.Sub), locale.English)
			assert.NoError(t, err)
		}(pair)
	}
	wg.Wait()

	all, err := store.FindAllMoodsByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestByMonthValidatesMonth(t *testing.T) {
	svc := moodservice.NewService(memory.NewStore(), nil)

	_, err := svc.ByMonth(context.Background(), "u1", 2025, 13)

	assert.ErrorIs(t, err, model.ErrInvalidDate)
}
