package locale

import "strings"

// Lang 是规范化后的界面语言代码。
type Lang string

const (
	English Lang = "en"
	Korean  Lang = "ko"
	Russian Lang = "ru"
)

// Default is used for empty or unsupported codes.
const Default = English

// Normalize maps codes such as "ko-KR" or "RU" to a supported language and
// falls back to English for anything else.
func Normalize(raw string) Lang {
	code := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(code, string(Korean)):
		return Korean
	case strings.HasPrefix(code, string(Russian)):
		return Russian
	default:
		return Default
	}
}

// Pick returns table[lang], falling back to the English entry.
func Pick(table map[Lang]string, lang Lang) string {
	if v, ok := table[lang]; ok && v != "" {
		return v
	}
	return table[Default]
}
