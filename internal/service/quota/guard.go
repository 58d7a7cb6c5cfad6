package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/mind-chat/backend/pkg/utils"
)

// DefaultDailyLimit is the number of chat messages a user may send per UTC day.
const DefaultDailyLimit = 10

// Decision 是配额检查的结果。
type Decision int

const (
	Allow Decision = iota
	WarnOnce
	Suppress
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case WarnOnce:
		return "warn_once"
	default:
		return "suppress"
	}
}

// Result of one Check. Text is only set for WarnOnce.
type Result struct {
	Decision Decision
	Count    int
	Text     string
}

// Counter 是配额检查依赖的持久化计数查询。
type Counter interface {
	CountMessagesSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// Config 控制配额行为。
type Config struct {
	DailyLimit int
	// FailOpen allows the message when the count query fails. The default
	// (false) rejects the request with the storage error.
	FailOpen bool
}

// Guard 实现每日消息配额，超限后只警告一次。
//
// The decision is derived from the persisted count alone:
//
//	count <  limit  Allow
//	count == limit  WarnOnce, and the caller stores the warning as a chat turn
//	count >  limit  Suppress
//
// Because the warning turn is stored, every process sharing the chat log
// agrees on whether today's warning was already given. The suppressed map is
// only a cache: once a user is over the limit on a UTC day they stay over it
// for the rest of that day, since the chat log is append-only.
type Guard struct {
	counter  Counter
	limit    int
	failOpen bool
	now      func() time.Time
	logger   *zap.Logger

	users *utils.KeyedMutex

	mu         sync.Mutex
	suppressed map[string]string
}

// NewGuard builds a guard backed by counter.
func NewGuard(counter Counter, cfg Config, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.DailyLimit
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &Guard{
		counter:    counter,
		limit:      limit,
		failOpen:   cfg.FailOpen,
		now:        time.Now,
		logger:     logger.Named("quota"),
		users:      utils.NewKeyedMutex(),
		suppressed: make(map[string]string),
	}
}

// WithClock replaces the time source. Intended for tests.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Limit returns the configured daily limit.
func (g *Guard) Limit() int { return g.limit }

// WarningText is the literal reply sent once the limit is reached.
func (g *Guard) WarningText() string {
	return fmt.Sprintf("You've reached today's limit of %d messages. Please come back tomorrow.", g.limit)
}

// Lock serializes a user's requests. Callers hold it across Check, the
// completion call and the chat-log append.
func (g *Guard) Lock(userID string) (unlock func()) {
	return g.users.Lock(userID)
}

// Check decides whether userID may send another message today. On WarnOnce
// the caller must persist the warning turn before releasing the user's lock.
func (g *Guard) Check(ctx context.Context, userID string) (Result, error) {
	now := g.now().UTC()
	day := now.Format("2006-01-02")

	g.mu.Lock()
	cached := g.suppressed[userID] == day
	g.mu.Unlock()
	if cached {
		return Result{Decision: Suppress, Count: g.limit + 1}, nil
	}

	count, err := g.counter.CountMessagesSince(ctx, userID, StartOfDay(now))
	if err != nil {
		if g.failOpen {
			g.logger.Warn("quota count failed, allowing message", zap.String("user", userID), zap.Error(err))
			return Result{Decision: Allow}, nil
		}
		return Result{}, fmt.Errorf("count today's messages: %w", err)
	}

	switch {
	case count < g.limit:
		return Result{Decision: Allow, Count: count}, nil
	case count == g.limit:
		g.logger.Info("daily limit reached", zap.String("user", userID), zap.Int("count", count))
		return Result{Decision: WarnOnce, Count: count, Text: g.WarningText()}, nil
	default:
		g.mu.Lock()
		g.suppressed[userID] = day
		g.mu.Unlock()
		return Result{Decision: Suppress, Count: count}, nil
	}
}

// Prune drops cache entries from days before now's UTC day and returns how
// many were removed.
func (g *Guard) Prune(now time.Time) int {
	today := now.UTC().Format("2006-01-02")

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for user, day := range g.suppressed {
		if day != today {
			delete(g.suppressed, user)
			removed++
		}
	}
	return removed
}

// Cached reports how many users are cached as suppressed.
func (g *Guard) Cached() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.suppressed)
}

// StartOfDay returns midnight UTC of t's UTC day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
