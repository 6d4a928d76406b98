package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/titanous/json5"
)

const (
	// DefaultRetention is how long a forwarded token stays suppressed.
	DefaultRetention = 24 * time.Hour

	// DefaultSweepInterval is how often expired tokens are evicted.
	DefaultSweepInterval = 24 * time.Hour

	// DefaultServiceName is the OTEL service name when none is configured.
	DefaultServiceName = "carelay"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		GroupNotifiers: map[string]string{},
		NotifierKeys:   map[string]string{},
		Dedupe: DedupeConfig{
			Retention:     DefaultRetention.String(),
			SweepInterval: DefaultSweepInterval.String(),
		},
		Telemetry: TelemetryConfig{
			Protocol:    "grpc",
			ServiceName: DefaultServiceName,
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: defaults plus env are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envID := func(key string, dst *FlexibleString) {
		if v := os.Getenv(key); v != "" {
			*dst = FlexibleString(strings.TrimSpace(v))
		}
	}

	envStr("CARELAY_TELEGRAM_TOKEN", &c.Telegram.Token)
	envStr("CARELAY_TELEGRAM_PROXY", &c.Telegram.Proxy)
	envStr("CARELAY_TELEGRAM_API_SERVER", &c.Telegram.APIServer)
	envStr("CARELAY_API_HASH", &c.APIHash)
	if v := os.Getenv("CARELAY_API_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			c.APIID = id
		}
	}

	envID("CARELAY_DESTINATION_GROUP_ID", &c.DestinationGroupID)
	envID("CARELAY_TRADING_BOT_ID", &c.TradingBotID)
	envID("CARELAY_SPECIFIED_GROUP_ID", &c.SpecifiedGroupID)
	envID("CARELAY_SPECIFIED_USER_ID", &c.SpecifiedUserID)

	envStr("CARELAY_DEDUPE_RETENTION", &c.Dedupe.Retention)
	envStr("CARELAY_DEDUPE_SWEEP_INTERVAL", &c.Dedupe.SweepInterval)
	envStr("CARELAY_DEDUPE_SWEEP_CRON", &c.Dedupe.SweepCron)

	// Telemetry
	envStr("CARELAY_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("CARELAY_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol)
	envStr("CARELAY_TELEMETRY_SERVICE_NAME", &c.Telemetry.ServiceName)
	if v := os.Getenv("CARELAY_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("CARELAY_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = v == "true" || v == "1"
	}
}

// normalize trims ids so map lookups match what the transport reports.
func (c *Config) normalize() {
	if c.GroupNotifiers == nil {
		c.GroupNotifiers = map[string]string{}
	}
	if c.NotifierKeys == nil {
		c.NotifierKeys = map[string]string{}
	}
	trimmed := make(map[string]string, len(c.GroupNotifiers))
	for id, key := range c.GroupNotifiers {
		trimmed[strings.TrimSpace(id)] = strings.TrimSpace(key)
	}
	c.GroupNotifiers = trimmed
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
}

// Validate reports every problem that would keep the relay from running.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram.token is required (or set CARELAY_TELEGRAM_TOKEN)"))
	}
	if len(c.GroupNotifiers) == 0 {
		errs = append(errs, errors.New("group_notifiers must list at least one chat to monitor"))
	}
	if c.DestinationGroupID == "" {
		errs = append(errs, errors.New("destination_group_id is required"))
	}
	if c.TradingBotID == "" {
		errs = append(errs, errors.New("trading_bot_id is required"))
	}
	if c.SpecifiedGroupID != "" && c.SpecifiedUserID == "" {
		errs = append(errs, errors.New("specified_user_id is required when specified_group_id is set"))
	}
	if c.Telegram.APIServer != "" && (c.APIID == 0 || c.APIHash == "") {
		errs = append(errs, errors.New("telegram.api_server needs api_id and api_hash for the self-hosted Bot API server"))
	}
	if _, err := c.Dedupe.RetentionDuration(); err != nil {
		errs = append(errs, fmt.Errorf("dedupe.retention: %w", err))
	}
	if _, err := c.Dedupe.SweepIntervalDuration(); err != nil {
		errs = append(errs, fmt.Errorf("dedupe.sweep_interval: %w", err))
	}
	if c.Dedupe.SweepCron != "" && !gronx.New().IsValid(c.Dedupe.SweepCron) {
		errs = append(errs, fmt.Errorf("dedupe.sweep_cron: invalid cron expression %q", c.Dedupe.SweepCron))
	}
	if c.Telemetry.Enabled {
		switch c.Telemetry.Protocol {
		case "", "grpc", "http":
		default:
			errs = append(errs, fmt.Errorf("telemetry.protocol must be \"grpc\" or \"http\", got %q", c.Telemetry.Protocol))
		}
	}
	return errors.Join(errs...)
}

// Save writes the config to a JSON file.
func Save(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
