package chat

import "time"

// Exchange 记录一轮完整的对话：用户消息与机器人回复。只追加，不修改。
type Exchange struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// GuestUser is the shared id of callers that sent no identity at all. Its
// history is never replayed into prompts or served back.
const GuestUser = "guest"
