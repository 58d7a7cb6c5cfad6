package ai

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// Sentinel replies returned instead of errors so a chat turn can always be saved.
const (
	EmptyResponse      = "(empty response)"
	ServiceUnavailable = "(service unavailable)"
)

// Dispatcher sends windowed turns and always yields some text.
type Dispatcher struct {
	client *Client
	logger *zap.Logger
}

// NewDispatcher wraps client. A nil client makes every Send return
// ServiceUnavailable.
func NewDispatcher(client *Client, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{client: client, logger: logger.Named("dispatcher")}
}

// Send returns the first choice's content verbatim, EmptyResponse for a
// blank answer or ServiceUnavailable for any failure. It never fails.
func (d *Dispatcher) Send(ctx context.Context, turns []*schema.Message, modelID, endUser string) string {
	msg, err := d.client.Complete(ctx, Request{Messages: turns, Model: modelID, EndUser: endUser})
	if err != nil {
		d.logger.Warn("completion failed, replying with sentinel",
			zap.String("end_user", endUser),
			zap.Error(err),
		)
		return ServiceUnavailable
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return EmptyResponse
	}
	return msg.Content
}

// EndUserTag derives the abuse-tracking tag from a user id: the local part of
// an email, the raw id otherwise, and "" for guests.
func EndUserTag(userID string) string {
	id := strings.TrimSpace(userID)
	if id == "" || strings.EqualFold(id, "anonymous") || strings.EqualFold(id, "guest") {
		return ""
	}
	if at := strings.Index(id, "@"); at >= 0 {
		return id[:at]
	}
	return id
}
