package relay

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/nextlevelbuilder/carelay/internal/bus"
)

// Handler processes one inbound message.
type Handler interface {
	Handle(ctx context.Context, msg bus.InboundMessage) Outcome
}

// Consume drains inbound messages and hands each to h, in arrival order, until
// ctx is cancelled. A panicking handler drops that message and consumption
// continues.
func Consume(ctx context.Context, router bus.MessageRouter, h Handler) {
	slog.Info("inbound consumer started")
	defer slog.Info("inbound consumer stopped")

	for {
		msg, ok := router.ConsumeInbound(ctx)
		if !ok {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		if _, err := handleSafely(ctx, h, msg); err != nil {
			slog.Error("message handler failed, event dropped",
				"channel", msg.Channel,
				"chat_id", msg.ChatID,
				"error", err,
			)
		}
	}
}

func handleSafely(ctx context.Context, h Handler, msg bus.InboundMessage) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			slog.Debug("handler panic stack", "stack", string(debug.Stack()))
		}
	}()
	return h.Handle(ctx, msg), nil
}
