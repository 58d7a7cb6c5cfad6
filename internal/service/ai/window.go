package ai

import (
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/mind-chat/backend/internal/model/chat"
	"github.com/zhouzirui/mind-chat/backend/internal/model/locale"
)

const (
	// DefaultHistoryWindow is how many past exchanges are replayed to the model.
	DefaultHistoryWindow = 5
	// MaxTurnRunes bounds every replayed or new turn.
	MaxTurnRunes = 200
	// Ellipsis marks a truncated turn.
	Ellipsis = "..."
)

// Windower turns a chat history into the bounded prompt sent to the model.
type Windower struct {
	size    int
	prompts *PromptBook
}

// NewWindower returns a Windower keeping the last size exchanges.
func NewWindower(size int, prompts *PromptBook) Windower {
	if size <= 0 {
		size = DefaultHistoryWindow
	}
	if prompts == nil {
		prompts = NewPromptBook("")
	}
	return Windower{size: size, prompts: prompts}
}

// Size reports how many exchanges Build replays at most.
func (w Windower) Size() int {
	if w.size <= 0 {
		return DefaultHistoryWindow
	}
	return w.size
}

// Build emits the localized system turn, then user/assistant turns for the
// last Size() exchanges of history (ascending by time), then newMessage.
func (w Windower) Build(history []chat.Exchange, newMessage string, lang string) []*schema.Message {
	start := len(history) - w.Size()
	if start < 0 {
		start = 0
	}

	turns := make([]*schema.Message, 0, 2+2*(len(history)-start))
	turns = append(turns, schema.SystemMessage(w.prompts.System(locale.Normalize(lang))))

	for _, ex := range history[start:] {
		if ex.Message != "" {
			turns = append(turns, schema.UserMessage(Truncate(ex.Message, MaxTurnRunes)))
		}
		if ex.Response != "" {
			turns = append(turns, schema.AssistantMessage(Truncate(ex.Response, MaxTurnRunes), nil))
		}
	}

	return append(turns, schema.UserMessage(Truncate(newMessage, MaxTurnRunes)))
}

// Truncate cuts s to max runes and appends Ellipsis when anything was removed.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + Ellipsis
}
