// Package telegram implements the notify sink for the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBase = "https://api.telegram.org"

// Telegram posts alert texts to a chat via the bot sendMessage method.
type Telegram struct {
	token  string
	chatID string
	base   string
	hc     *http.Client
}

// New returns a Telegram sink for the given bot token and chat id.
func New(token, chatID string, timeout time.Duration) *Telegram {
	return &Telegram{
		token:  token,
		chatID: chatID,
		base:   defaultBase,
		hc:     &http.Client{Timeout: timeout},
	}
}

// Notify sends text to the configured chat.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"chat_id": t.chatID, "text": text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.base, t.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.hc.Do(req)
	if err != nil {
		return fmt.Errorf("telegram API unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API replied %s", resp.Status)
	}

	return nil
}

// Close is a no-op; the sink holds no connection state.
func (t *Telegram) Close() error {
	return nil
}
