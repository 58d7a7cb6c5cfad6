// Package aitest provides an in-process chat model for tests.
package aitest

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/mind-chat/backend/internal/service/ai"
)

// Call records what one Generate invocation received.
type Call struct {
	Input   []*schema.Message
	Model   string
	EndUser string
}

// StubModel implements model.BaseChatModel with canned answers.
type StubModel struct {
	mu sync.Mutex

	// Reply, when set, decides the answer for each call.
	Reply func(input []*schema.Message) (*schema.Message, error)
	// Content is returned as an assistant message when Reply is nil.
	Content string
	// Err fails every call when Reply is nil.
	Err error

	calls []Call
}

var _ model.BaseChatModel = (*StubModel)(nil)

// Answering returns a stub that always replies with content.
func Answering(content string) *StubModel {
	return &StubModel{Content: content}
}

// Failing returns a stub whose every call fails with err.
func Failing(err error) *StubModel {
	return &StubModel{Err: err}
}

func (m *StubModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	common := model.GetCommonOptions(&model.Options{}, opts...)
	call := Call{Input: input, EndUser: ai.EndUserFromOptions(opts...)}
	if common.Model != nil {
		call.Model = *common.Model
	}

	m.mu.Lock()
	m.calls = append(m.calls, call)
	reply, content, err := m.Reply, m.Content, m.Err
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if reply != nil {
		return reply(input)
	}
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(content, nil), nil
}

func (m *StubModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// Calls returns a copy of every recorded call.
func (m *StubModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastCall returns the most recent call, or the zero Call.
func (m *StubModel) LastCall() Call {
	calls := m.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}
