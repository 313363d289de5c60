package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"teamup-backend/internal/config"
)

const telegramAPI = "https://api.telegram.org"

// Telegram posts operator notifications to a chat using the Bot API.
type Telegram struct {
	botToken string
	chatID   string
	apiURL   string
	client   *http.Client
}

// NewTelegram returns nil when the bot token or chat id is not configured.
func NewTelegram(cfg *config.Config) *Telegram {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
		return nil
	}
	return &Telegram{
		botToken: cfg.Telegram.BotToken,
		chatID:   cfg.Telegram.ChatID,
		apiURL:   telegramAPI,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send sends message to the configured chat.
func (t *Telegram) Send(ctx context.Context, message string) error {
	if t == nil {
		return fmt.Errorf("telegram bot token or chat ID is not configured")
	}

	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.botToken)

	payload := map[string]string{
		"chat_id": t.chatID,
		"text":    message,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API request failed with status code: %d", resp.StatusCode)
	}

	return nil
}
