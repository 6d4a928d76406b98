package bus

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultInboundBuffer is the inbound queue depth used by New.
const DefaultInboundBuffer = 256

// MessageBus is an in-memory MessageRouter backed by a buffered channel.
// PublishInbound blocks when the buffer is full until the message is taken or
// the bus is closed.
type MessageBus struct {
	inbound   chan InboundMessage
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a MessageBus with the default buffer size.
func New() *MessageBus {
	return NewWithBuffer(DefaultInboundBuffer)
}

// NewWithBuffer creates a MessageBus with a custom inbound buffer size.
func NewWithBuffer(size int) *MessageBus {
	if size < 0 {
		size = 0
	}
	return &MessageBus{
		inbound: make(chan InboundMessage, size),
		done:    make(chan struct{}),
	}
}

// PublishInbound queues a message for the consumer.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	slog.Debug("inbound message queued", "channel", msg.Channel, "chat_id", msg.ChatID)
	select {
	case b.inbound <- msg:
	case <-b.done:
		slog.Debug("bus closed, inbound message dropped", "channel", msg.Channel, "chat_id", msg.ChatID)
	}
}

// Close releases publishers blocked on a full buffer. Messages published
// after Close are dropped. Safe to call more than once.
func (b *MessageBus) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// ConsumeInbound waits for the next message. Returns false once ctx is done.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case <-ctx.Done():
		return InboundMessage{}, false
	case msg := <-b.inbound:
		return msg, true
	}
}

// Pending returns the number of queued inbound messages.
func (b *MessageBus) Pending() int { return len(b.inbound) }
