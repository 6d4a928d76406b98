package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/carelay/internal/bus"
	"github.com/nextlevelbuilder/carelay/internal/channels"
	"github.com/nextlevelbuilder/carelay/internal/channels/telegram"
	"github.com/nextlevelbuilder/carelay/internal/config"
	"github.com/nextlevelbuilder/carelay/internal/dedupe"
	"github.com/nextlevelbuilder/carelay/internal/relay"
	"github.com/nextlevelbuilder/carelay/internal/routing"
	"github.com/nextlevelbuilder/carelay/internal/tracing"
)

func runRelay() {
	setupLogging()

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "path", cfgPath, "error", err)
		if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) {
			fmt.Println("No configuration found. Run the setup wizard:  carelay onboard")
		}
		os.Exit(1)
	}

	// Validate already checked these parse.
	retention, _ := cfg.Dedupe.RetentionDuration()
	sweepInterval, _ := cfg.Dedupe.SweepIntervalDuration()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Telemetry, Version)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	}

	msgBus := bus.New()

	tg, err := telegram.New(cfg.Telegram, msgBus, cfg.MonitoredChatIDs())
	if err != nil {
		slog.Error("failed to create telegram channel", "error", err)
		os.Exit(1)
	}
	channelMgr := channels.NewManager()
	channelMgr.RegisterChannel(tg.Name(), tg)

	cache := dedupe.New(retention)
	router := routing.New(cfg.GroupNotifiers, cfg.NotifierKeys)
	engine := relay.NewEngine(tg, cache, router, relay.Options{
		DestinationGroupID: cfg.DestinationGroupID.String(),
		TradingBotID:       cfg.TradingBotID.String(),
		FilterChatID:       cfg.SpecifiedGroupID.String(),
		FilterSenderID:     cfg.SpecifiedUserID.String(),
	})
	sweeper := relay.NewSweeper(cache, sweepInterval, cfg.Dedupe.SweepCron)

	if err := channelMgr.StartAll(ctx); err != nil {
		slog.Error("failed to start channels", "error", err)
		os.Exit(1)
	}

	slog.Info("carelay starting",
		"version", Version,
		"channels", channelMgr.GetEnabledChannels(),
		"monitored_chats", len(cfg.GroupNotifiers),
		"destination_group", cfg.DestinationGroupID,
		"trading_bot", cfg.TradingBotID,
		"sender_filter_chat", cfg.SpecifiedGroupID,
		"retention", retention,
	)

	if me, err := tg.Me(ctx); err != nil {
		slog.Warn("could not check bot capabilities", "error", err)
	} else {
		for _, w := range telegram.TransportWarnings(me, cfg.TradingBotID.String()) {
			slog.Warn("telegram transport limit", "detail", w)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		relay.Consume(gctx, msgBus, engine)
		return nil
	})
	g.Go(func() error {
		sweeper.Run(gctx)
		return nil
	})

	<-ctx.Done()
	slog.Info("graceful shutdown initiated")

	// Unblock the poller if it is stuck publishing into a full bus.
	msgBus.Close()
	channelMgr.StopAll(context.Background())
	_ = g.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		slog.Warn("tracing shutdown failed", "error", err)
	}
	slog.Info("carelay stopped")
}
