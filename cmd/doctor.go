package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/carelay/internal/bus"
	"github.com/nextlevelbuilder/carelay/internal/channels/telegram"
	"github.com/nextlevelbuilder/carelay/internal/config"
	"github.com/nextlevelbuilder/carelay/internal/routing"
)

func doctorCmd() *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and destination reachability",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor(offline)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip Telegram API checks")
	return cmd
}

func runDoctor(offline bool) {
	fmt.Println("carelay doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  Config invalid:\n    %s\n", err)
	}

	fmt.Println()
	fmt.Println("  Monitored chats:")
	router := routing.New(cfg.GroupNotifiers, cfg.NotifierKeys)
	ids := cfg.MonitoredChatIDs()
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("    %-16s key %-4s %s\n", id, router.KeyFor(id), router.LabelFor(id))
	}
	if len(ids) == 0 {
		fmt.Println("    (none)")
	}
	if cfg.SpecifiedGroupID != "" {
		fmt.Printf("    sender filter: only %s in %s\n", cfg.SpecifiedUserID, cfg.SpecifiedGroupID)
	}

	retention, _ := cfg.Dedupe.RetentionDuration()
	fmt.Println()
	fmt.Printf("  Dedupe:   retention %s", retention)
	if cfg.Dedupe.SweepCron != "" {
		fmt.Printf(", sweep cron %q\n", cfg.Dedupe.SweepCron)
	} else {
		interval, _ := cfg.Dedupe.SweepIntervalDuration()
		fmt.Printf(", sweep every %s\n", interval)
	}
	if cfg.Telemetry.Enabled {
		fmt.Printf("  Tracing:  %s (%s)\n", cfg.Telemetry.Endpoint, cfg.Telemetry.Protocol)
	}

	fmt.Println()
	fmt.Println("  Telegram:")
	if cfg.Telegram.Token == "" {
		fmt.Printf("    %-12s NOT SET\n", "Token:")
		return
	}
	fmt.Printf("    %-12s set\n", "Token:")
	if cfg.Telegram.APIServer != "" {
		fmt.Printf("    %-12s %s (api_id %d)\n", "API server:", cfg.Telegram.APIServer, cfg.APIID)
	}
	if offline {
		return
	}

	tg, err := telegram.New(cfg.Telegram, bus.New(), nil)
	if err != nil {
		fmt.Printf("    %-12s FAILED (%s)\n", "Client:", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	me, err := tg.Me(ctx)
	if err != nil {
		fmt.Printf("    %-12s FAILED (%s)\n", "Bot:", err)
		return
	}
	fmt.Printf("    %-12s @%s (reads all group messages: %v)\n", "Bot:", me.Username, me.CanReadAllGroupMessages)

	checkDestination(ctx, tg, "Destination:", cfg.DestinationGroupID.String())
	checkDestination(ctx, tg, "Trading bot:", cfg.TradingBotID.String())

	for _, w := range telegram.TransportWarnings(me, cfg.TradingBotID.String()) {
		fmt.Printf("    WARNING: %s\n", w)
	}
}

func checkDestination(ctx context.Context, tg *telegram.Channel, label, id string) {
	if id == "" {
		fmt.Printf("    %-12s NOT SET\n", label)
		return
	}
	entity, err := tg.Resolve(ctx, id)
	if err != nil {
		fmt.Printf("    %-12s %s UNRESOLVED (%s)\n", label, id, err)
		return
	}
	fmt.Printf("    %-12s %s (%s)\n", label, entity, entity.Kind)
}
