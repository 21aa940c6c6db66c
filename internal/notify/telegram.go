package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Telegram posts the message straight to the bot API.
type Telegram struct {
	Token  string
	ChatID string
	Client *http.Client

	// BaseURL is overridable for tests.
	BaseURL string
}

func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		Token:   strings.TrimSpace(token),
		ChatID:  strings.TrimSpace(chatID),
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: "https://api.telegram.org",
	}
}

func (t *Telegram) Send(ctx context.Context, msg string) error {
	if t.Token == "" || t.ChatID == "" {
		return errors.New("missing TELEGRAM_BOT_TOKEN/TELEGRAM_CHAT_ID")
	}
	form := url.Values{
		"chat_id": {t.ChatID},
		"text":    {msg},
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram http=%d", resp.StatusCode)
	}
	return nil
}
