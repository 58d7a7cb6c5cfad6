// Package companiontest builds a fully wired companion.Service for tests,
// backed by the in-memory store and a stub chat model.
package companiontest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zhouzirui/mind-chat/backend/internal/service/ai"
	"github.com/zhouzirui/mind-chat/backend/internal/service/ai/aitest"
	"github.com/zhouzirui/mind-chat/backend/internal/service/companion"
	"github.com/zhouzirui/mind-chat/backend/internal/service/emotion"
	moodservice "github.com/zhouzirui/mind-chat/backend/internal/service/mood"
	"github.com/zhouzirui/mind-chat/backend/internal/service/quota"
	"github.com/zhouzirui/mind-chat/backend/internal/storage/memory"
)

// Fixture exposes the pieces a test may want to inspect.
type Fixture struct {
	Service *companion.Service
	Store   *memory.Store
	Model   *aitest.StubModel
	Guard   *quota.Guard
	Now     time.Time
}

// New wires the service with a clock frozen at now and a daily limit of limit
// (0 means the default).
func New(t testing.TB, stub *aitest.StubModel, now time.Time, limit int) Fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.NewStore()
	clock := func() time.Time { return now }

	client, err := ai.NewClient(context.Background(), stub, ai.ClientConfig{ModelID: "test-model"}, logger)
	require.NoError(t, err)

	guard := quota.NewGuard(store, quota.Config{DailyLimit: limit}, logger).WithClock(clock)
	svc := companion.NewService(companion.Deps{
		Chats:      store,
		Notes:      store,
		Moods:      moodservice.NewService(store, logger),
		Guard:      guard,
		Windower:   ai.NewWindower(0, ai.NewPromptBook("")),
		Dispatcher: ai.NewDispatcher(client, logger),
		Classifier: emotion.NewClassifier(client, logger),
		Logger:     logger,
		Now:        clock,
	})
	return Fixture{Service: svc, Store: store, Model: stub, Guard: guard, Now: now}
}
