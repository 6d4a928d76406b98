package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/carelay/internal/config"
	"github.com/nextlevelbuilder/carelay/internal/routing"
)

func onboardCmd() *cobra.Command {
	var nonInteractive bool
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Create or update the relay config",
		Long:  "Walks through the settings carelay needs and writes them to the config file. With --non-interactive the config is built from CARELAY_* environment variables only.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if nonInteractive {
				return runAutoOnboard(cfgPath)
			}
			return runOnboard(cfgPath)
		},
	}
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "build the config from environment variables")
	return cmd
}

// onboardAnswers holds the wizard's fields as the user typed them.
type onboardAnswers struct {
	Token          string
	DestinationID  string
	TradingBotID   string
	MonitoredChats string // comma or space separated chat ids
	NotifierLabel  string
	FilterGroupID  string
	FilterUserID   string
}

func runOnboard(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	a := answersFromConfig(cfg)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram bot token").
				Description("From @BotFather. Add the bot to every monitored chat and turn privacy mode off (/setprivacy).").
				EchoMode(huh.EchoModePassword).
				Value(&a.Token).
				Validate(required("bot token")),
			huh.NewInput().
				Title("Destination group id").
				Description("Chat that receives every relayed message, e.g. -1001234567890").
				Value(&a.DestinationID).
				Validate(required("destination group id")),
			huh.NewInput().
				Title("Trading bot id").
				Description("Numeric id or @username the trading bot reads from. Bots cannot message other bots, so use a user or group, not the bot itself.").
				Value(&a.TradingBotID).
				Validate(required("trading bot id")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Monitored chats").
				Description("Chat ids to watch, separated by commas").
				Value(&a.MonitoredChats).
				Validate(func(s string) error {
					if len(splitIDs(s)) == 0 {
						return errors.New("at least one chat is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Notifier label").
				Description("Header prepended to relayed messages").
				Value(&a.NotifierLabel),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Sender-filtered group id (optional)").
				Description("In this chat only one sender's messages are relayed").
				Value(&a.FilterGroupID),
			huh.NewInput().
				Title("Allowed sender id").
				Value(&a.FilterUserID),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("onboard: %w", err)
	}

	if _, err := os.Stat(cfgPath); err == nil {
		overwrite := false
		if err := huh.NewConfirm().
			Title(fmt.Sprintf("%s exists. Overwrite?", cfgPath)).
			Value(&overwrite).
			Run(); err != nil {
			return fmt.Errorf("onboard: %w", err)
		}
		if !overwrite {
			fmt.Println("Aborted, config left unchanged.")
			return nil
		}
	}

	applyOnboardAnswers(cfg, a)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Printf("Config saved to %s. Run `carelay doctor` to check the destinations.\n", cfgPath)
	return nil
}

// runAutoOnboard writes a config built from defaults and CARELAY_* env vars.
func runAutoOnboard(cfgPath string) error {
	fmt.Println("Auto-onboard: building config from environment variables...")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if v := os.Getenv("CARELAY_MONITORED_CHATS"); v != "" {
		a := answersFromConfig(cfg)
		a.MonitoredChats = v
		applyOnboardAnswers(cfg, a)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Printf("  Config saved to %s\n", cfgPath)
	return nil
}

func answersFromConfig(cfg *config.Config) onboardAnswers {
	a := onboardAnswers{
		Token:          cfg.Telegram.Token,
		DestinationID:  cfg.DestinationGroupID.String(),
		TradingBotID:   cfg.TradingBotID.String(),
		MonitoredChats: strings.Join(cfg.MonitoredChatIDs(), ","),
		NotifierLabel:  cfg.NotifierKeys[routing.DefaultKey],
		FilterGroupID:  cfg.SpecifiedGroupID.String(),
		FilterUserID:   cfg.SpecifiedUserID.String(),
	}
	if a.NotifierLabel == "" {
		a.NotifierLabel = routing.FallbackLabel
	}
	return a
}

// applyOnboardAnswers writes the wizard's answers into cfg. Every monitored
// chat is routed to the default notifier key unless it already has one.
func applyOnboardAnswers(cfg *config.Config, a onboardAnswers) {
	cfg.Telegram.Token = strings.TrimSpace(a.Token)
	cfg.DestinationGroupID = config.FlexibleString(strings.TrimSpace(a.DestinationID))
	cfg.TradingBotID = config.FlexibleString(strings.TrimSpace(a.TradingBotID))
	cfg.SpecifiedGroupID = config.FlexibleString(strings.TrimSpace(a.FilterGroupID))
	cfg.SpecifiedUserID = config.FlexibleString(strings.TrimSpace(a.FilterUserID))

	notifiers := make(map[string]string)
	for _, id := range splitIDs(a.MonitoredChats) {
		key := cfg.GroupNotifiers[id]
		if key == "" {
			key = routing.DefaultKey
		}
		notifiers[id] = key
	}
	cfg.GroupNotifiers = notifiers

	if cfg.NotifierKeys == nil {
		cfg.NotifierKeys = make(map[string]string)
	}
	if label := strings.TrimSpace(a.NotifierLabel); label != "" {
		cfg.NotifierKeys[routing.DefaultKey] = label
	}
}

func splitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
