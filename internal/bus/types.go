package bus

import "context"

// InboundMessage represents a message received from a channel (Telegram, etc.)
type InboundMessage struct {
	Channel  string            `json:"channel"`
	ChatID   string            `json:"chat_id"`
	SenderID string            `json:"sender_id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"` // channel-specific extras (message_id, username, chat_title)
}

// MessageRouter abstracts inbound message routing between channels and the relay engine.
type MessageRouter interface {
	PublishInbound(msg InboundMessage)
	ConsumeInbound(ctx context.Context) (InboundMessage, bool)
}
