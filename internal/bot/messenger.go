package bot

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ayodejiades/ayodeji/pkg/utils"
)

// ErrNoBotToken is returned by LogMessenger downloads.
var ErrNoBotToken = errors.New("telegram bot token not configured")

// Messenger sends replies to a chat and fetches attachments by file ID.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
	Download(ctx context.Context, fileID, dst string) error
}

// LogMessenger logs replies instead of sending them. It stands in for
// Telegram when no bot token is configured.
type LogMessenger struct {
	logger *zap.Logger
}

// NewLogMessenger returns a LogMessenger. logger may be nil.
func NewLogMessenger(logger *zap.Logger) *LogMessenger {
	return &LogMessenger{logger: utils.OrNop(logger)}
}

// Send logs the reply.
func (m *LogMessenger) Send(_ context.Context, chatID int64, text string) error {
	m.logger.Info("reply (not sent)", zap.Int64("chat_id", chatID), zap.String("text", utils.Truncate(text, 200)))
	return nil
}

// Download always fails; attachments live on Telegram's servers.
func (m *LogMessenger) Download(context.Context, string, string) error {
	return ErrNoBotToken
}
