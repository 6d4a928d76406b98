// Package relay forwards contract-address sightings from monitored chats to the
// configured destinations.
//
// The Engine handles one inbound message at a time: it applies the per-chat
// sender filter, extracts tokens and links, claims unseen tokens in the dedup
// cache, and delivers the composed text to each destination independently.
// The Sweeper evicts expired tokens from the same cache in the background.
package relay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/carelay/internal/bus"
	"github.com/nextlevelbuilder/carelay/internal/channels"
	"github.com/nextlevelbuilder/carelay/internal/dedupe"
	"github.com/nextlevelbuilder/carelay/internal/extract"
	"github.com/nextlevelbuilder/carelay/internal/routing"
)

// Destination names used in LegResult and logs.
const (
	DestinationGroup = "destination_group"
	DestinationBot   = "trading_bot"
)

const tracerName = "github.com/nextlevelbuilder/carelay/internal/relay"

// Client is the chat platform capability the engine delivers through.
type Client interface {
	Resolve(ctx context.Context, id string) (channels.Entity, error)
	SendText(ctx context.Context, to channels.Entity, text string) error
}

// Options configures an Engine.
type Options struct {
	DestinationGroupID string
	TradingBotID       string

	// Messages in FilterChatID are relayed only when sent by FilterSenderID.
	// Empty FilterChatID disables the filter.
	FilterChatID   string
	FilterSenderID string

	Now func() time.Time // defaults to time.Now
}

type destination struct {
	name string
	id   string
}

// Engine turns inbound messages into relays.
type Engine struct {
	client       Client
	cache        *dedupe.Cache
	router       *routing.Router
	destinations []destination
	filterChat   string
	filterSender string
	now          func() time.Time
	tracer       trace.Tracer
}

// NewEngine creates an Engine. The cache is shared with the Sweeper.
func NewEngine(client Client, cache *dedupe.Cache, router *routing.Router, opts Options) *Engine {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		client: client,
		cache:  cache,
		router: router,
		destinations: []destination{
			{name: DestinationGroup, id: opts.DestinationGroupID},
			{name: DestinationBot, id: opts.TradingBotID},
		},
		filterChat:   opts.FilterChatID,
		filterSender: opts.FilterSenderID,
		now:          now,
		tracer:       otel.Tracer(tracerName),
	}
}

// Handle processes one inbound message. It never returns an error: resolution
// and send failures are recorded per leg in the Outcome and logged.
// Tokens stay claimed even when every leg fails.
func (e *Engine) Handle(ctx context.Context, msg bus.InboundMessage) Outcome {
	out := Outcome{ID: uuid.NewString()[:8]}

	ctx, span := e.tracer.Start(ctx, "relay.handle", trace.WithAttributes(
		attribute.String("relay.id", out.ID),
		attribute.String("chat.id", msg.ChatID),
		attribute.String("sender.id", msg.SenderID),
	))
	defer span.End()

	slog.Debug("incoming message",
		"forward_id", out.ID,
		"chat_id", msg.ChatID,
		"sender_id", msg.SenderID,
		"text_preview", channels.Truncate(msg.Content, 80),
	)

	if e.filterChat != "" && msg.ChatID == e.filterChat && msg.SenderID != e.filterSender {
		out.Status, out.Reason = StatusSkipped, ReasonSenderFiltered
		span.SetAttributes(attribute.String("relay.skip", string(out.Reason)))
		slog.Debug("message skipped: sender filtered", "forward_id", out.ID, "chat_id", msg.ChatID, "sender_id", msg.SenderID)
		return out
	}

	found := extract.Extract(msg.Content)
	out.URLs = found.URLs
	out.Tokens = e.cache.Claim(found.Tokens, e.now())

	if len(out.Tokens) == 0 && len(out.URLs) == 0 {
		out.Status, out.Reason = StatusSkipped, ReasonNoNewContent
		span.SetAttributes(attribute.String("relay.skip", string(out.Reason)))
		slog.Debug("no new address or links found",
			"forward_id", out.ID,
			"chat_id", msg.ChatID,
			"seen_tokens", len(found.Tokens),
		)
		return out
	}

	out.Status = StatusForwarded
	out.Text = Compose(e.router.LabelFor(msg.ChatID), out.Tokens, out.URLs)
	span.SetAttributes(
		attribute.Int("relay.tokens", len(out.Tokens)),
		attribute.Int("relay.urls", len(out.URLs)),
	)

	out.Legs = e.dispatch(ctx, out)

	if out.Delivered() == 0 {
		span.SetStatus(codes.Error, "no destination reached")
	}
	return out
}

// dispatch delivers text to every destination concurrently. Each leg is
// independent: one failing never cancels the other.
func (e *Engine) dispatch(ctx context.Context, out Outcome) []LegResult {
	legs := make([]LegResult, len(e.destinations))
	var g errgroup.Group
	for i, d := range e.destinations {
		g.Go(func() error {
			legs[i] = e.deliver(ctx, out, d)
			return nil
		})
	}
	_ = g.Wait()
	return legs
}

func (e *Engine) deliver(ctx context.Context, out Outcome, d destination) LegResult {
	leg := LegResult{Destination: d.name, Target: d.id}

	ctx, span := e.tracer.Start(ctx, "relay.deliver", trace.WithAttributes(
		attribute.String("relay.id", out.ID),
		attribute.String("relay.destination", d.name),
	))
	defer span.End()

	entity, err := e.client.Resolve(ctx, d.id)
	if err != nil {
		leg.Err = asResolveError(d.id, err)
		span.RecordError(leg.Err)
		span.SetStatus(codes.Error, "resolve failed")
		slog.Warn("error resolving destination entity",
			"forward_id", out.ID,
			"destination", d.name,
			"target", d.id,
			"error", err,
		)
		return leg
	}
	leg.Resolved, leg.Entity = true, entity

	if err := e.client.SendText(ctx, entity, out.Text); err != nil {
		leg.Err = asSendError(entity, err)
		span.RecordError(leg.Err)
		span.SetStatus(codes.Error, "send failed")
		slog.Warn("error forwarding message",
			"forward_id", out.ID,
			"destination", d.name,
			"entity", entity.String(),
			"error", err,
		)
		return leg
	}
	leg.Sent = true

	slog.Info("forwarded message",
		"forward_id", out.ID,
		"destination", d.name,
		"entity", entity.String(),
		"tokens", out.Tokens,
		"urls", out.URLs,
	)
	return leg
}

func asResolveError(id string, err error) error {
	var re *channels.ResolveError
	if errors.As(err, &re) {
		return err
	}
	return &channels.ResolveError{ID: id, Err: err}
}

func asSendError(to channels.Entity, err error) error {
	var se *channels.SendError
	if errors.As(err, &se) {
		return err
	}
	return &channels.SendError{Entity: to, Err: err}
}
