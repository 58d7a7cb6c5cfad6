package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrUnavailable is returned when no chat model is configured.
var ErrUnavailable = errors.New("completion service unavailable")

// ClientConfig 描述调用补全服务的参数。
type ClientConfig struct {
	ModelID     string
	Timeout     time.Duration
	MaxInflight int64
}

// Client 封装大模型调用：编译好的 eino 链、并发上限与超时。
type Client struct {
	chain   compose.Runnable[[]*schema.Message, *schema.Message]
	modelID string
	timeout time.Duration
	sem     *semaphore.Weighted
	logger  *zap.Logger
}

// NewClient compiles a single-node chain around chatModel. A nil chatModel
// yields a client whose every call fails with ErrUnavailable.
func NewClient(ctx context.Context, chatModel model.BaseChatModel, cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxInflight <= 0 {
		cfg.MaxInflight = 16
	}

	c := &Client{
		modelID: cfg.ModelID,
		timeout: cfg.Timeout,
		sem:     semaphore.NewWeighted(cfg.MaxInflight),
		logger:  logger.Named("ai"),
	}
	if chatModel == nil {
		return c, nil
	}

	chain := compose.NewChain[[]*schema.Message, *schema.Message]()
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}
	c.chain = runnable
	return c, nil
}

// Enabled reports whether a chat model is wired in.
func (c *Client) Enabled() bool {
	return c != nil && c.chain != nil
}

// ModelID returns the configured default model identifier.
func (c *Client) ModelID() string {
	if c == nil {
		return ""
	}
	return c.modelID
}

// Request is one outbound completion call.
type Request struct {
	Messages []*schema.Message
	// Model overrides the configured model when non-empty.
	Model string
	// EndUser is an optional abuse-tracking tag.
	EndUser string
}

// Complete runs one round trip. Concurrency is bounded by MaxInflight; the
// configured timeout covers both the wait for a slot and the call.
func (c *Client) Complete(ctx context.Context, req Request) (*schema.Message, error) {
	if !c.Enabled() {
		return nil, ErrUnavailable
	}

	// 超时同时覆盖排队等待和模型调用
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for completion slot: %w", err)
	}
	defer c.sem.Release(1)

	modelOpts := make([]model.Option, 0, 2)
	modelID := req.Model
	if modelID == "" {
		modelID = c.modelID
	}
	if modelID != "" {
		modelOpts = append(modelOpts, model.WithModel(modelID))
	}
	if req.EndUser != "" {
		modelOpts = append(modelOpts, WithEndUser(req.EndUser))
	}

	started := time.Now()
	msg, err := c.chain.Invoke(ctx, req.Messages, compose.WithChatModelOption(modelOpts...))
	if err != nil {
		return nil, fmt.Errorf("failed to run completion chain: %w", err)
	}

	c.logger.Debug("completion finished",
		zap.String("model", modelID),
		zap.Int("turns", len(req.Messages)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return msg, nil
}

type endUserOptions struct {
	User string
}

// WithEndUser tags a call with the end user for abuse tracking. Chat models
// that understand the option forward it; others ignore it.
func WithEndUser(tag string) model.Option {
	return model.WrapImplSpecificOptFn(func(o *endUserOptions) {
		o.User = tag
	})
}

// EndUserFromOptions extracts the tag set by WithEndUser.
func EndUserFromOptions(opts ...model.Option) string {
	return model.GetImplSpecificOptions(&endUserOptions{}, opts...).User
}
