package ai

import (
	"strings"

	"github.com/zhouzirui/mind-chat/backend/internal/model/locale"
)

var defaultSystemPrompts = map[locale.Lang]string{
	locale.English: "You are a supportive mental-health companion. " +
		"Reply concisely (2-4 sentences) with empathy. Use plain, friendly language. " +
		"Never give medical diagnoses; suggest professional help when appropriate.",
	locale.Korean: "당신은 공감적인 멘탈 헬스 동반자입니다. " +
		"항상 한국어로, 2-4문장 안에서 따뜻하고 친절하게 응답하세요. " +
		"진단이나 처방은 피하고, 필요하면 전문가의 도움을 권하세요.",
	locale.Russian: "Вы — поддерживающий помощник по ментальному здоровью. " +
		"Отвечайте по-русски, кратко (2-4 предложения), тепло и с эмпатией. " +
		"Не ставьте диагнозы и не давайте медицинских назначений; при необходимости советуйте обратиться к специалисту.",
}

// PromptBook 按语言保存系统提示词，未知语言回退到英文。
type PromptBook struct {
	system map[locale.Lang]string
}

// NewPromptBook builds the default prompt table. A non-blank englishOverride
// replaces the built-in English prompt.
func NewPromptBook(englishOverride string) *PromptBook {
	system := make(map[locale.Lang]string, len(defaultSystemPrompts))
	for lang, text := range defaultSystemPrompts {
		system[lang] = text
	}
	if override := strings.TrimSpace(englishOverride); override != "" {
		system[locale.English] = override
	}
	return &PromptBook{system: system}
}

// System returns the system prompt for lang.
func (b *PromptBook) System(lang locale.Lang) string {
	if b == nil {
		return locale.Pick(defaultSystemPrompts, lang)
	}
	return locale.Pick(b.system, lang)
}
