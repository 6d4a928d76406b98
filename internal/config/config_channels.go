package config

// TelegramConfig configures the Telegram Bot API transport.
type TelegramConfig struct {
	Token     string `json:"token"`
	Proxy     string `json:"proxy,omitempty"`      // HTTP(S) proxy URL for Bot API calls
	APIServer string `json:"api_server,omitempty"` // self-hosted telegram-bot-api URL (needs api_id/api_hash)
}
