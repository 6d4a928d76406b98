package cmd

import (
	"testing"

	"github.com/nextlevelbuilder/carelay/internal/config"
	"github.com/nextlevelbuilder/carelay/internal/routing"
)

func TestApplyOnboardAnswers(t *testing.T) {
	cfg := config.Default()
	cfg.GroupNotifiers = map[string]string{"-1002": "2"}
	cfg.NotifierKeys = map[string]string{"2": "Whales"}

	applyOnboardAnswers(cfg, onboardAnswers{
		Token:          " 123:abc ",
		DestinationID:  "-100999",
		TradingBotID:   "@tradebot",
		MonitoredChats: "-1001, -1002\n-1003",
		NotifierLabel:  "Alpha",
	})

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.DestinationGroupID != "-100999" || cfg.TradingBotID != "@tradebot" {
		t.Errorf("destinations = %q, %q", cfg.DestinationGroupID, cfg.TradingBotID)
	}

	want := map[string]string{"-1001": routing.DefaultKey, "-1002": "2", "-1003": routing.DefaultKey}
	if len(cfg.GroupNotifiers) != len(want) {
		t.Fatalf("group_notifiers = %v, want %v", cfg.GroupNotifiers, want)
	}
	for id, key := range want {
		if cfg.GroupNotifiers[id] != key {
			t.Errorf("group_notifiers[%s] = %q, want %q", id, cfg.GroupNotifiers[id], key)
		}
	}
	if cfg.NotifierKeys[routing.DefaultKey] != "Alpha" || cfg.NotifierKeys["2"] != "Whales" {
		t.Errorf("notifier_keys = %v", cfg.NotifierKeys)
	}
	if cfg.SpecifiedGroupID != "" {
		t.Errorf("specified_group_id = %q, want empty", cfg.SpecifiedGroupID)
	}
}

func TestAnswersFromConfig_DefaultLabel(t *testing.T) {
	a := answersFromConfig(config.Default())
	if a.NotifierLabel != routing.FallbackLabel {
		t.Errorf("NotifierLabel = %q, want %q", a.NotifierLabel, routing.FallbackLabel)
	}
	if a.MonitoredChats != "" {
		t.Errorf("MonitoredChats = %q, want empty", a.MonitoredChats)
	}
}

func TestSplitIDs(t *testing.T) {
	got := splitIDs(" -1, -2,,\t-3 ")
	if len(got) != 3 || got[0] != "-1" || got[2] != "-3" {
		t.Errorf("splitIDs = %v", got)
	}
}
