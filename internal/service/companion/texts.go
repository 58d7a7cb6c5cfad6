package companion

import (
	"fmt"

	"github.com/zhouzirui/mind-chat/backend/internal/model/locale"
	"github.com/zhouzirui/mind-chat/backend/internal/model/mood"
)

var moodMessageFormats = map[locale.Lang]string{
	locale.English: "Today's mood is '%s', with sub-feeling '%s'.",
	locale.Korean:  "오늘의 기분은 '%s', 세부 감정은 '%s' 입니다.",
	locale.Russian: "Сегодняшнее настроение: '%s', поднастроение: '%s'.",
}

// moodMessage is the user turn sent to the model after a direct mood save.
func moodMessage(pair mood.Pair, lang locale.Lang) string {
	return fmt.Sprintf(locale.Pick(moodMessageFormats, lang), pair.Main, pair.Sub)
}

const (
	noteReplyUnclassified = "Your note was saved. I couldn't confidently classify a mood this time."
	noteReplyFailed       = "Your note was saved, but mood analysis/saving failed. You can set the mood manually."
	noteReplySavedFormat  = "Saved your note and marked %s / %s for %s."
)
