package bus

import (
	"context"
	"testing"
	"time"
)

func TestMessageBus_PublishConsume(t *testing.T) {
	b := NewWithBuffer(4)
	b.PublishInbound(InboundMessage{Channel: "telegram", ChatID: "-100", Content: "first"})
	b.PublishInbound(InboundMessage{Channel: "telegram", ChatID: "-100", Content: "second"})

	if got := b.Pending(); got != 2 {
		t.Fatalf("Pending() = %d, want 2", got)
	}

	ctx := context.Background()
	for _, want := range []string{"first", "second"} {
		msg, ok := b.ConsumeInbound(ctx)
		if !ok {
			t.Fatalf("ConsumeInbound returned ok=false, want message %q", want)
		}
		if msg.Content != want {
			t.Errorf("ConsumeInbound content = %q, want %q", msg.Content, want)
		}
	}
}

func TestMessageBus_ConsumeCancelled(t *testing.T) {
	b := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, ok := b.ConsumeInbound(ctx); ok {
		t.Fatal("ConsumeInbound on empty bus with expired ctx returned ok=true")
	}
}

func TestMessageBus_CloseReleasesBlockedPublisher(t *testing.T) {
	b := NewWithBuffer(1)
	b.PublishInbound(InboundMessage{Content: "fills the buffer"})

	returned := make(chan struct{})
	go func() {
		b.PublishInbound(InboundMessage{Content: "blocked"})
		close(returned)
	}()

	select {
	case <-returned:
		t.Fatal("PublishInbound on a full bus returned before Close")
	case <-time.After(20 * time.Millisecond):
	}

	b.Close()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("PublishInbound still blocked after Close")
	}

	b.Close()
	b.PublishInbound(InboundMessage{Content: "after close"})
	if got := b.Pending(); got != 1 {
		t.Errorf("Pending() = %d, want 1 (only the message queued before Close)", got)
	}
}
