package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/titanous/json5"
)

// FlexibleString accepts both "str" and 123 in JSON. Telegram ids show up in
// config files as either.
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json5.Unmarshal(data, &s); err == nil {
		*f = FlexibleString(strings.TrimSpace(s))
		return nil
	}
	var n int64
	if err := json5.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or integer id, got %s", string(data))
	}
	*f = FlexibleString(strconv.FormatInt(n, 10))
	return nil
}

// String returns the id as a string.
func (f FlexibleString) String() string { return string(f) }

// Config is the root configuration for the relay.
// Top-level keys match the legacy relay bot config.json.
type Config struct {
	APIID              int               `json:"api_id,omitempty"`
	APIHash            string            `json:"api_hash,omitempty"`
	GroupNotifiers     map[string]string `json:"group_notifiers"` // chat id → notifier key
	NotifierKeys       map[string]string `json:"notifier_keys"`   // notifier key → label
	DestinationGroupID FlexibleString    `json:"destination_group_id"`
	TradingBotID       FlexibleString    `json:"trading_bot_id"`
	SpecifiedGroupID   FlexibleString    `json:"specified_group_id,omitempty"` // chat that only relays one sender
	SpecifiedUserID    FlexibleString    `json:"specified_user_id,omitempty"`

	Telegram  TelegramConfig  `json:"telegram"`
	Dedupe    DedupeConfig    `json:"dedupe,omitempty"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
	mu        sync.RWMutex
}

// DedupeConfig tunes the token dedup cache and its sweep loop.
type DedupeConfig struct {
	Retention     string `json:"retention,omitempty"`      // Go duration (default "24h")
	SweepInterval string `json:"sweep_interval,omitempty"` // Go duration (default "24h")
	SweepCron     string `json:"sweep_cron,omitempty"`     // cron expression; overrides sweep_interval when set
}

// RetentionDuration parses Retention, falling back to 24h.
func (d DedupeConfig) RetentionDuration() (time.Duration, error) {
	return parseDuration(d.Retention, DefaultRetention)
}

// SweepIntervalDuration parses SweepInterval, falling back to 24h.
func (d DedupeConfig) SweepIntervalDuration() (time.Duration, error) {
	return parseDuration(d.SweepInterval, DefaultSweepInterval)
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		// Bare numbers are seconds, as in the legacy TIME_THRESHOLD.
		secs, numErr := strconv.Atoi(s)
		if numErr != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		d = time.Duration(secs) * time.Second
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

// TelemetryConfig configures OpenTelemetry export for relay traces.
// When enabled, spans are exported to an OTLP-compatible backend (Jaeger, Tempo, etc.)
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty"`      // enable OTLP export (default false)
	Endpoint    string            `json:"endpoint,omitempty"`     // OTLP endpoint (e.g. "localhost:4317", "https://otel.example.com:4318")
	Protocol    string            `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`     // plaintext connection (default false, set true for local dev)
	ServiceName string            `json:"service_name,omitempty"` // OTEL service name (default "carelay")
	Headers     map[string]string `json:"headers,omitempty"`      // extra headers (e.g. auth tokens for cloud backends)
}

// MonitoredChatIDs returns the chats whose messages are relayed: every key of
// group_notifiers.
func (c *Config) MonitoredChatIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.GroupNotifiers))
	for id := range c.GroupNotifiers {
		ids = append(ids, strings.TrimSpace(id))
	}
	return ids
}
