package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ayodejiades/ayodeji/internal/persona"
	"github.com/ayodejiades/ayodeji/pkg/utils"
)

// Router dispatches Telegram updates: /start, /privacy, text questions,
// voice notes and PDF documents.
type Router struct {
	core        *Core
	messenger   Messenger
	privacyURL  string
	maxUpload   int64
	tempDir     string
	sendTimeout time.Duration
	logger      *zap.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithPrivacyURL sets the policy link sent for /privacy.
func WithPrivacyURL(url string) RouterOption {
	return func(r *Router) { r.privacyURL = url }
}

// WithMaxUpload refuses documents Telegram reports as larger than n bytes.
func WithMaxUpload(n int64) RouterOption {
	return func(r *Router) { r.maxUpload = n }
}

// WithTempDir sets where attachments are downloaded. Empty means os.TempDir.
func WithTempDir(dir string) RouterOption {
	return func(r *Router) { r.tempDir = dir }
}

// WithSendTimeout bounds delivery of each reply. The bound starts after the
// reply is built and ignores the update's own deadline.
func WithSendTimeout(d time.Duration) RouterOption {
	return func(r *Router) { r.sendTimeout = d }
}

// WithRouterLogger sets the logger.
func WithRouterLogger(l *zap.Logger) RouterOption {
	return func(r *Router) { r.logger = utils.OrNop(l) }
}

// NewRouter creates a Router replying through messenger.
func NewRouter(core *Core, messenger Messenger, opts ...RouterOption) *Router {
	r := &Router{
		core:       core,
		messenger:  messenger,
		privacyURL:  "https://your-website.com/privacy",
		sendTimeout: 30 * time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// HandleUpdate processes one update and sends at most one reply. Updates
// without a message (edits, callbacks) and unknown commands are ignored.
// The returned error is a delivery error; pipeline failures become replies,
// and a reply is still sent after ctx is done.
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID
	reply, ok := r.replyTo(ctx, msg)
	if !ok {
		return nil
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.sendTimeout)
	defer cancel()
	if err := r.messenger.Send(sendCtx, chatID, reply); err != nil {
		r.logger.Error("failed to send reply", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Router) replyTo(ctx context.Context, msg *tgbotapi.Message) (string, bool) {
	switch {
	case msg.IsCommand():
		switch msg.Command() {
		case "start":
			return persona.Greeting, true
		case "privacy":
			return persona.Privacy(r.privacyURL), true
		default:
			r.logger.Debug("ignoring command", zap.String("command", msg.Command()))
			return "", false
		}
	case msg.Voice != nil:
		return r.handleVoice(ctx, msg.Voice.FileID), true
	case msg.Audio != nil:
		return r.handleVoice(ctx, msg.Audio.FileID), true
	case msg.Document != nil:
		return r.handleDocument(ctx, msg.Document), true
	case strings.TrimSpace(msg.Text) != "":
		return r.core.Ask(ctx, msg.Text), true
	default:
		return "", false
	}
}

func (r *Router) handleVoice(ctx context.Context, fileID string) string {
	path, cleanup, err := r.download(ctx, fileID, "voice-*.ogg")
	if err != nil {
		r.logger.Error("failed to download voice note", zap.Error(err))
		return persona.NotHeard
	}
	defer cleanup()

	text, ok := r.core.Transcribe(ctx, path)
	if !ok {
		return text
	}
	return persona.VoiceReply(text, r.core.Ask(ctx, text))
}

func (r *Router) handleDocument(ctx context.Context, doc *tgbotapi.Document) string {
	if !strings.Contains(strings.ToLower(doc.MimeType), "pdf") {
		return persona.PDFOnly
	}
	if r.maxUpload > 0 && int64(doc.FileSize) > r.maxUpload {
		r.logger.Warn("document too large", zap.String("name", doc.FileName), zap.Int("size", doc.FileSize))
		return persona.IngestFailed
	}
	path, cleanup, err := r.download(ctx, doc.FileID, "upload-*.pdf")
	if err != nil {
		r.logger.Error("failed to download document", zap.String("name", doc.FileName), zap.Error(err))
		return persona.IngestFailed
	}
	defer cleanup()

	name := doc.FileName
	if name == "" {
		name = filepath.Base(path)
	}
	return r.core.Ingest(ctx, path, name)
}

// download fetches fileID into a new temp file named by pattern. cleanup
// removes it.
func (r *Router) download(ctx context.Context, fileID, pattern string) (string, func(), error) {
	f, err := os.CreateTemp(r.tempDir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	_ = f.Close()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("failed to remove temp file", zap.String("path", path), zap.Error(err))
		}
	}
	if err := r.messenger.Download(ctx, fileID, path); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
