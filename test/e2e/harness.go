// Package e2e drives the whole bot, from Telegram update to reply, over a real
// SQLite store and PDF parser. Only the model, the speech API and Telegram
// itself are replaced.
package e2e

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrQuota is what the scripted model returns while "out of quota".
var ErrQuota = errors.New("429 resource exhausted")

// NotInHandout is ContextEcho's reply to a prompt with an empty context.
const NotInHandout = "Oga, that one no dey inside handout."

// ContextEcho is a chat model that answers with the context section of the
// prompt it receives, so tests can see exactly what was retrieved. It fails
// the first FailFirst calls, or every call when Down is set.
type ContextEcho struct {
	mu        sync.Mutex
	FailFirst int
	Down      bool
	Prompts   []string
}

// Complete implements llm.Model.
func (m *ContextEcho) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Down || len(m.Prompts) <= m.FailFirst {
		return "", ErrQuota
	}
	if c := ContextOf(prompt); c != "" {
		return c, nil
	}
	return NotInHandout, nil
}

// ContextOf returns the text between "Context:" and "Question:" in a rendered prompt.
func ContextOf(prompt string) string {
	start := strings.Index(prompt, "Context:")
	end := strings.Index(prompt, "Question:")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(prompt[start+len("Context:") : end])
}

// DownEmbedder fails every call, like an embedding API that is unreachable.
type DownEmbedder struct {
	Dims int
}

func (d *DownEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, ErrQuota
}

func (d *DownEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, ErrQuota
}

func (d *DownEmbedder) Dimensions() int { return d.Dims }

func (d *DownEmbedder) Close() error { return nil }

// Reply is one message the bot sent.
type Reply struct {
	ChatID int64
	Text   string
}

// Messenger stands in for Telegram: replies are recorded and downloads are
// served from files registered by ID.
type Messenger struct {
	mu    sync.Mutex
	sent  []Reply
	files map[string]string
}

// NewMessenger returns an empty Messenger.
func NewMessenger() *Messenger {
	return &Messenger{files: make(map[string]string)}
}

// Serve makes the file at path downloadable as fileID.
func (m *Messenger) Serve(fileID, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[fileID] = path
}

// Send implements bot.Messenger.
func (m *Messenger) Send(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Reply{chatID, text})
	return nil
}

// Download implements bot.Messenger.
func (m *Messenger) Download(_ context.Context, fileID, dst string) error {
	m.mu.Lock()
	src, ok := m.files[fileID]
	m.mu.Unlock()
	if !ok {
		return errors.New("file not found on telegram")
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

// Replies returns the replies sent so far.
func (m *Messenger) Replies() []Reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Reply(nil), m.sent...)
}

// Last returns the text of the latest reply, or "".
func (m *Messenger) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Text
}

// SpeechToText is a speech API stand-in that checks it was handed a WAV file
// and returns a fixed transcript.
type SpeechToText struct {
	Text    string
	GotWAVs int
}

// Transcribe implements transcribe.SpeechToText.
func (s *SpeechToText) Transcribe(_ context.Context, wavPath string) (string, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return "", err
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return "", errors.New("not a wav file")
	}
	s.GotWAVs++
	return s.Text, nil
}
