// Package aiclient builds go-openai clients for the OpenAI-compatible
// endpoints the bot talks to (Gemini for chat and embeddings, Groq for speech).
package aiclient

import (
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// New returns a client for baseURL authenticated with apiKey. A zero timeout
// leaves the HTTP client without a deadline; callers still bound work with ctx.
func New(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}
