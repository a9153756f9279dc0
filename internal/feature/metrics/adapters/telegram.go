package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"stock_metrics/internal/feature/metrics/domain/entity"
	"stock_metrics/internal/feature/metrics/usecase"
)

// DefaultTelegramBaseURL is the Bot API endpoint.
const DefaultTelegramBaseURL = "https://api.telegram.org"

// ErrTelegramNotConfigured is returned when the bot token or chat id is missing.
var ErrTelegramNotConfigured = errors.New("telegram bot token or chat id not set")

// TelegramConfig holds the Bot API credentials.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	BaseURL  string
}

// LoadTelegramConfig reads TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.
func LoadTelegramConfig() TelegramConfig {
	return TelegramConfig{
		BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		BaseURL:  DefaultTelegramBaseURL,
	}
}

// Enabled reports whether both credentials are set.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != ""
}

type telegramNotifier struct {
	cfg        TelegramConfig
	client     *http.Client
	attempts   int
	retryDelay time.Duration
}

var _ usecase.Notifier = (*telegramNotifier)(nil)

// NewTelegramNotifier posts batch summaries to a chat. Sends are retried up to three times.
func NewTelegramNotifier(cfg TelegramConfig, client *http.Client) *telegramNotifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTelegramBaseURL
	}
	return &telegramNotifier{cfg: cfg, client: client, attempts: 3, retryDelay: time.Second}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (n *telegramNotifier) Notify(ctx context.Context, s *entity.Summary) error {
	if !n.cfg.Enabled() {
		return ErrTelegramNotConfigured
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: n.cfg.ChatID, Text: FormatSummary(s)})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(n.cfg.BaseURL, "/"), n.cfg.BotToken)

	var lastErr error
	for i := 0; i < n.attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i) * n.retryDelay):
			}
		}
		lastErr = n.send(ctx, url, body)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (n *telegramNotifier) send(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out sendMessageResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil && resp.StatusCode/100 == 2 {
		return fmt.Errorf("telegram decode: %w", err)
	}
	if resp.StatusCode/100 != 2 || !out.OK {
		if out.Description != "" {
			return fmt.Errorf("telegram status=%d: %s", resp.StatusCode, out.Description)
		}
		return fmt.Errorf("telegram status=%d", resp.StatusCode)
	}
	return nil
}

// FormatSummary renders the plain text message sent after a batch.
func FormatSummary(s *entity.Summary) string {
	kinds := make([]string, len(s.Kinds))
	for i, k := range s.Kinds {
		kinds[i] = string(k)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "metrics run %s\n", s.RunID)
	fmt.Fprintf(&b, "kinds: %s\n", strings.Join(kinds, ", "))
	fmt.Fprintf(&b, "succeeded: %d\n", s.SucceededCount())
	if failed := s.FailedSymbols(); len(failed) > 0 {
		fmt.Fprintf(&b, "failed: %d (%s)\n", len(failed), strings.Join(failed, ", "))
	} else {
		b.WriteString("failed: 0\n")
	}
	fmt.Fprintf(&b, "written: %d\n", s.Written)
	fmt.Fprintf(&b, "elapsed: %s", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	return b.String()
}
