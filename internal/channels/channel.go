// Package channels provides the channel abstraction layer between a chat
// platform and the relay engine. A channel listens on the platform, publishes
// inbound messages from monitored chats onto the message bus, and exposes entity
// resolution and text delivery for outbound relays.
package channels

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mattn/go-runewidth"

	"github.com/nextlevelbuilder/carelay/internal/bus"
)

// Entity is a resolved destination handle (group, channel, or user/bot peer).
type Entity struct {
	ID    string // platform id as configured ("-100123", "@tradebot")
	Peer  int64  // numeric platform id, 0 if unknown
	Title string // display name for logs
	Kind  string // "group", "supergroup", "channel", "private"
}

func (e Entity) String() string {
	if e.Title != "" {
		return fmt.Sprintf("%s (%s)", e.Title, e.ID)
	}
	return e.ID
}

// ResolveError reports that a destination id could not be resolved.
type ResolveError struct {
	ID  string
	Err error
}

func (e *ResolveError) Error() string { return fmt.Sprintf("resolve %s: %v", e.ID, e.Err) }
func (e *ResolveError) Unwrap() error { return e.Err }

// SendError reports that delivery to a resolved entity failed.
type SendError struct {
	Entity Entity
	Err    error
}

func (e *SendError) Error() string { return fmt.Sprintf("send to %s: %v", e.Entity, e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

// Channel defines the interface that all channel implementations must satisfy.
type Channel interface {
	// Name returns the channel identifier (e.g., "telegram").
	Name() string

	// Start begins listening for messages. Should be non-blocking after setup.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the channel.
	Stop(ctx context.Context) error

	// IsRunning returns whether the channel is actively processing messages.
	IsRunning() bool

	// IsMonitored reports whether messages from chatID are relayed.
	IsMonitored(chatID string) bool
}

// BaseChannel provides shared functionality for all channel implementations.
// Channel implementations should embed this struct.
type BaseChannel struct {
	name      string
	bus       bus.MessageRouter
	running   bool
	monitored map[string]bool
}

// NewBaseChannel creates a new BaseChannel. monitored lists the chat ids whose
// messages are published; an empty list publishes nothing.
func NewBaseChannel(name string, msgBus bus.MessageRouter, monitored []string) *BaseChannel {
	set := make(map[string]bool, len(monitored))
	for _, id := range monitored {
		set[id] = true
	}
	return &BaseChannel{
		name:      name,
		bus:       msgBus,
		monitored: set,
	}
}

// Name returns the channel name.
func (c *BaseChannel) Name() string { return c.name }

// IsRunning returns whether the channel is running.
func (c *BaseChannel) IsRunning() bool { return c.running }

// SetRunning updates the running state.
func (c *BaseChannel) SetRunning(running bool) { c.running = running }

// IsMonitored reports whether chatID is in the monitored set.
func (c *BaseChannel) IsMonitored(chatID string) bool { return c.monitored[chatID] }

// MonitoredCount returns the size of the monitored set.
func (c *BaseChannel) MonitoredCount() int { return len(c.monitored) }

// HandleMessage publishes a message from a monitored chat to the bus.
// Messages from other chats are dropped. Returns whether the message was published.
func (c *BaseChannel) HandleMessage(senderID, chatID, content string, metadata map[string]string) bool {
	if !c.IsMonitored(chatID) {
		slog.Debug("message from unmonitored chat dropped", "channel", c.name, "chat_id", chatID)
		return false
	}

	c.bus.PublishInbound(bus.InboundMessage{
		Channel:  c.name,
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
		Metadata: metadata,
	})
	return true
}

// Truncate shortens s to at most maxWidth display cells, appending "..." if
// truncated. Wide characters (CJK, emoji) count as two cells.
func Truncate(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "...")
}
