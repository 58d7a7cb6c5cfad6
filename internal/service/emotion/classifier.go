package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/mind-chat/backend/internal/model/mood"
	"github.com/zhouzirui/mind-chat/backend/internal/service/ai"
)

// Outcome 是一次情绪分类的结果类型。
type Outcome int

const (
	// Invalid: 模型有回复，但不是合法 JSON 或组合不在分类表中。
	Invalid Outcome = iota
	// Valid: 得到合法的 (main, sub)。
	Valid
	// ServiceError: 调用模型本身失败。
	ServiceError
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case ServiceError:
		return "service_error"
	default:
		return "invalid"
	}
}

// Result carries the outcome and, for Valid, the pair.
type Result struct {
	Outcome Outcome
	Pair    mood.Pair
	// Raw is the model output, kept for logging.
	Raw string
	Err error
}

// Classifier 调用大模型给日记打情绪标签，只做一次请求，不重试。
type Classifier struct {
	client   *ai.Client
	template prompt.ChatTemplate
	logger   *zap.Logger
}

// NewClassifier builds a classifier on top of client.
func NewClassifier(client *ai.Client, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		client: client,
		template: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage("{instruction}"),
			schema.UserMessage("{request}"),
		),
		logger: logger.Named("classifier"),
	}
}

// Classify sends note to the model and validates the answer against the taxonomy.
func (c *Classifier) Classify(ctx context.Context, note string) Result {
	messages, err := c.template.Format(ctx, map[string]any{
		"instruction": classifierInstruction,
		"request":     buildRequest(note),
	})
	if err != nil {
		return Result{Outcome: ServiceError, Err: fmt.Errorf("format classifier prompt: %w", err)}
	}

	msg, err := c.client.Complete(ctx, ai.Request{Messages: messages})
	if err != nil {
		c.logger.Warn("classifier call failed", zap.Error(err))
		return Result{Outcome: ServiceError, Err: err}
	}
	if msg == nil {
		return Result{Outcome: Invalid, Err: fmt.Errorf("empty classifier response")}
	}

	pair, err := ParseOutput(msg.Content)
	if err != nil {
		c.logger.Info("classifier output rejected", zap.String("raw", msg.Content), zap.Error(err))
		return Result{Outcome: Invalid, Raw: msg.Content, Err: err}
	}
	return Result{Outcome: Valid, Pair: pair, Raw: msg.Content}
}

type classifierPayload struct {
	Main string `json:"main"`
	Sub  string `json:"sub"`
}

// ParseOutput 解析模型返回的 JSON 并校验情绪组合。
// 仅允许整段输出是一个 JSON 对象（可被 ``` 代码块包裹）。
func ParseOutput(content string) (mood.Pair, error) {
	trimmed := stripCodeFence(strings.TrimSpace(content))
	if !strings.HasPrefix(trimmed, "{") {
		return mood.Pair{}, fmt.Errorf("classifier returned non-JSON content")
	}

	var payload classifierPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return mood.Pair{}, fmt.Errorf("parse classifier json: %w", err)
	}
	return mood.Validate(mood.Normalize(payload.Main), mood.Normalize(payload.Sub))
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}

func buildRequest(note string) string {
	var b strings.Builder
	b.WriteString("Below is a user's journal entry. Classify the emotion of this entry as one of the following.\n")
	b.WriteString("Main mood: ")
	mains := mood.Mains()
	for i, m := range mains {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(m))
	}
	b.WriteString("\nSub mood list:\n")
	for _, m := range mains {
		b.WriteString("- ")
		b.WriteString(string(m))
		b.WriteString(": ")
		for i, s := range mood.Subs(m) {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(string(s))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nRespond ONLY in the following JSON format. Example: {\"main\":\"good\", \"sub\":\"hopeful\"}\n")
	b.WriteString("Journal: ")
	b.WriteString(note)
	return b.String()
}

const classifierInstruction = "You are an emotion classifier. Classify strictly using the provided mood list and return only JSON."
