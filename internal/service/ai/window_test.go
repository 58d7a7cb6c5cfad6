package ai_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/mind-chat/backend/internal/model/chat"
	"github.com/zhouzirui/mind-chat/backend/internal/model/locale"
	"github.com/zhouzirui/mind-chat/backend/internal/service/ai"
)

func history(n int) []chat.Exchange {
	base := time.Date(2025, 5, 28, 8, 0, 0, 0, time.UTC)
	out := make([]chat.Exchange, n)
	for i := range out {
		out[i] = chat.Exchange{
			UserID:    "u1",
			Message:   fmt.Sprintf("question %d", i),
			Response:  fmt.Sprintf("answer %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return out
}

func TestBuildKeepsAtMostFivePriorExchanges(t *testing.T) {
	w := ai.NewWindower(0, nil)

	turns := w.Build(history(50), "hello", "en")

	// system + 5*(user+assistant) + new user turn
	require.Len(t, turns, 12)
	assert.Equal(t, schema.System, turns[0].Role)
	assert.Equal(t, "question 45", turns[1].Content)
	assert.Equal(t, "answer 49", turns[10].Content)
	assert.Equal(t, schema.User, turns[11].Role)
	assert.Equal(t, "hello", turns[11].Content)
}

func TestBuildShortHistory(t *testing.T) {
	w := ai.NewWindower(5, nil)

	turns := w.Build(history(2), "hi", "en")

	require.Len(t, turns, 6)
	assert.Equal(t, []schema.RoleType{schema.System, schema.User, schema.Assistant, schema.User, schema.Assistant, schema.User},
		roles(turns))
}

func TestBuildSkipsEmptySides(t *testing.T) {
	w := ai.NewWindower(5, nil)
	h := []chat.Exchange{
		{Message: "only user"},
		{Response: "only bot"},
	}

	turns := w.Build(h, "next", "en")

	assert.Equal(t, []schema.RoleType{schema.System, schema.User, schema.Assistant, schema.User}, roles(turns))
}

func TestBuildTruncatesLongTurns(t *testing.T) {
	w := ai.NewWindower(5, nil)
	long := strings.Repeat("a", 250)
	h := []chat.Exchange{{Message: long, Response: long}}

	turns := w.Build(h, long, "en")

	want := strings.Repeat("a", 200) + "..."
	require.Len(t, turns, 4)
	for _, turn := range turns[1:] {
		assert.Equal(t, want, turn.Content)
	}
}

func TestBuildSelectsLocalizedSystemPrompt(t *testing.T) {
	prompts := ai.NewPromptBook("")
	w := ai.NewWindower(5, prompts)

	cases := map[string]locale.Lang{
		"ko":    locale.Korean,
		"ko-KR": locale.Korean,
		"RU":    locale.Russian,
		"en":    locale.English,
		"fr":    locale.English,
		"":      locale.English,
	}
	for raw, lang := range cases {
		turns := w.Build(nil, "x", raw)
		assert.Equal(t, prompts.System(lang), turns[0].Content, "lang %q", raw)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	w := ai.NewWindower(5, nil)
	h := history(8)

	assert.Equal(t, w.Build(h, "same", "ru"), w.Build(h, "same", "ru"))
}

func TestPromptBookEnglishOverride(t *testing.T) {
	prompts := ai.NewPromptBook("  Be brief.  ")

	assert.Equal(t, "Be brief.", prompts.System(locale.English))
	assert.NotEqual(t, "Be brief.", prompts.System(locale.Korean))
}

func TestTruncateCountsRunes(t *testing.T) {
	korean := strings.Repeat("가", 201)

	got := ai.Truncate(korean, 200)

	assert.Equal(t, strings.Repeat("가", 200)+"...", got)
	assert.Equal(t, strings.Repeat("가", 200), ai.Truncate(strings.Repeat("가", 200), 200))
}

func roles(turns []*schema.Message) []schema.RoleType {
	out := make([]schema.RoleType, len(turns))
	for i, t := range turns {
		out[i] = t.Role
	}
	return out
}
