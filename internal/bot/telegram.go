package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageRunes is Telegram's limit on message text.
const maxMessageRunes = 4096

// TelegramMessenger sends through the Bot API and downloads attachments
// from Telegram's file servers.
type TelegramMessenger struct {
	api      *tgbotapi.BotAPI
	client   *http.Client
	maxBytes int64
}

// NewTelegramMessenger authenticates token against endpoint (a format string
// taking the token and method, as tgbotapi.APIEndpoint). Downloads larger than
// maxBytes are refused; zero means no limit.
func NewTelegramMessenger(token, endpoint string, client *http.Client, maxBytes int64) (*TelegramMessenger, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &TelegramMessenger{api: api, client: client, maxBytes: maxBytes}, nil
}

// Username returns the bot's username.
func (m *TelegramMessenger) Username() string {
	return m.api.Self.UserName
}

// Send delivers text, split into several messages when it exceeds Telegram's limit.
func (m *TelegramMessenger) Send(ctx context.Context, chatID int64, text string) error {
	for _, part := range splitMessage(text, maxMessageRunes) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := m.api.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

// Download saves the file with fileID to dst.
func (m *TelegramMessenger) Download(ctx context.Context, fileID, dst string) error {
	url, err := m.api.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("telegram get file: %w", err)
	}
	return fetch(ctx, m.client, url, dst, m.maxBytes)
}

func fetch(ctx context.Context, client *http.Client, url, dst string, maxBytes int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: unexpected status %s", resp.Status)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	if maxBytes > 0 && n > maxBytes {
		return fmt.Errorf("download: file exceeds %d bytes", maxBytes)
	}
	return nil
}

// splitMessage cuts text into parts of at most limit runes, preferring to
// break after a newline in the second half of a part.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var parts []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i >= limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
