// Package transcribe turns voice notes into text: ffmpeg normalises the audio
// to a temporary WAV, then a speech-to-text backend transcribes it.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ayodejiades/ayodeji/internal/failure"
)

// ErrEmptyTranscript is returned when the backend heard nothing.
var ErrEmptyTranscript = errors.New("empty transcript")

// Converter re-encodes the audio at src into a WAV file at dst.
type Converter interface {
	ToWAV(ctx context.Context, src, dst string) error
}

// SpeechToText transcribes a WAV file.
type SpeechToText interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Transcriber converts then transcribes. It never modifies the input file.
type Transcriber struct {
	converter Converter
	stt       SpeechToText
	tempDir   string
	logger    *zap.Logger
}

// Option configures a Transcriber.
type Option func(*Transcriber)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transcriber) { t.logger = l }
}

// WithTempDir sets where the intermediate WAV is created. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(t *Transcriber) { t.tempDir = dir }
}

// New creates a Transcriber.
func New(converter Converter, stt SpeechToText, opts ...Option) *Transcriber {
	t := &Transcriber{converter: converter, stt: stt, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe returns the trimmed transcript of the audio at path. Errors are
// failure.KindTranscription. The intermediate WAV is removed before returning.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", failure.Transcription("transcribe", err)
	}
	wav, err := os.CreateTemp(t.tempDir, "voice-*.wav")
	if err != nil {
		return "", failure.Transcription("transcribe", fmt.Errorf("create temp file: %w", err))
	}
	wavPath := wav.Name()
	_ = wav.Close()
	defer func() {
		if err := os.Remove(wavPath); err != nil && !os.IsNotExist(err) {
			t.logger.Warn("failed to remove temp audio", zap.String("path", wavPath), zap.Error(err))
		}
	}()

	if err := t.converter.ToWAV(ctx, path, wavPath); err != nil {
		t.logger.Warn("audio conversion failed", zap.String("path", path), zap.Error(err))
		return "", failure.Transcription("convert", err)
	}
	text, err := t.stt.Transcribe(ctx, wavPath)
	if err != nil {
		t.logger.Warn("speech to text failed", zap.Error(err))
		return "", failure.Transcription("speech to text", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", failure.Transcription("speech to text", ErrEmptyTranscript)
	}
	t.logger.Debug("voice note transcribed", zap.Int("chars", len(text)))
	return text, nil
}
