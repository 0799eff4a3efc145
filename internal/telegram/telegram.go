package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/deusflow/okolica/internal/retry"
)

const defaultAPIBase = "https://api.telegram.org"

// Sender posts HTML messages through the Bot API.
type Sender struct {
	Token   string
	APIBase string // default https://api.telegram.org
	HTTP    *http.Client
	Retry   retry.RetryConfig
}

func NewSender(token string) *Sender {
	return &Sender{
		Token:   token,
		APIBase: defaultAPIBase,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Retry: retry.RetryConfig{
			MaxAttempts: 3,
			// Exponential backoff: 2^attempt seconds
			DelayFor: func(attempt int, _ error) time.Duration {
				return time.Duration(1<<attempt) * time.Second
			},
		},
	}
}

// SendMessage sends text to a chat or channel with retry logic.
func (s *Sender) SendMessage(ctx context.Context, chatID, text string) error {
	attempt := 0
	err := retry.WithRetry(ctx, s.Retry, func() error {
		attempt++
		err := s.sendMessageOnce(ctx, chatID, text)
		if err != nil {
			slog.Warn("telegram send failed", "attempt", attempt, "error", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("can't send message: %w", err)
	}
	slog.Debug("message sent to telegram", "chat", chatID, "attempt", attempt)
	return nil
}

func (s *Sender) sendMessageOnce(ctx context.Context, chatID, text string) error {
	base := s.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", base, s.Token)

	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error make JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error HTTP request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}
	return nil
}
