package transcribe

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// AudioAPI is the slice of the go-openai client used for transcription.
type AudioAPI interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Whisper transcribes through an OpenAI-compatible audio endpoint (Groq by default).
// No language is sent so the model detects it; temperature stays at zero.
type Whisper struct {
	client AudioAPI
	model  string
}

// NewWhisper returns a SpeechToText for model.
func NewWhisper(client AudioAPI, model string) *Whisper {
	return &Whisper{client: client, model: model}
}

// Transcribe uploads the WAV at wavPath and returns the text as given.
func (w *Whisper) Transcribe(ctx context.Context, wavPath string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: wavPath,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return resp.Text, nil
}
