package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// BotInfo is the part of getMe the relay cares about.
type BotInfo struct {
	Username                string
	CanJoinGroups           bool
	CanReadAllGroupMessages bool // false while privacy mode is on
}

// TransportWarnings lists Bot API limits that keep the relay from working
// with this bot and configuration:
//
//   - with privacy mode on, a bot only sees commands and replies in groups
//     where it is not an admin, so most monitored messages never arrive;
//   - bots cannot message other bots, so a trading bot target that is itself
//     a bot account fails on every relay.
//
// Numeric trading bot ids cannot be classified offline and produce no warning.
func TransportWarnings(me BotInfo, tradingBotID string) []string {
	var warnings []string
	if !me.CanReadAllGroupMessages {
		warnings = append(warnings, fmt.Sprintf(
			"privacy mode is on for @%s: disable it with @BotFather (/setprivacy) or make the bot an admin in every monitored group", me.Username))
	}
	if LooksLikeBot(tradingBotID) {
		warnings = append(warnings, fmt.Sprintf(
			"trading_bot_id %s is a bot account: the Bot API cannot deliver bot-to-bot messages, point it at a user or a group the trading bot reads", tradingBotID))
	}
	return warnings
}

// LooksLikeBot reports whether id is a username that Telegram reserves for
// bots. Bot usernames must end in "bot".
func LooksLikeBot(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	if _, err := strconv.ParseInt(id, 10, 64); err == nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimPrefix(id, "@")), "bot")
}
