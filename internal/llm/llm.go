// Package llm sends rendered prompts to an OpenAI-compatible chat model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse is returned when the model answers with no choices or only whitespace.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Model completes a single prompt.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ChatAPI is the slice of the go-openai client the chat model uses.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ChatModel sends each prompt as one user message with no history.
type ChatModel struct {
	client      ChatAPI
	model       string
	temperature float32
}

// NewChatModel returns a Model backed by client. A temperature of 0 is sent
// as the smallest positive float32, since the request omits a zero value and
// the API would then use its own default.
func NewChatModel(client ChatAPI, model string, temperature float32) *ChatModel {
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	return &ChatModel{client: client, model: model, temperature: temperature}
}

// Complete returns the first choice's content unchanged.
func (m *ChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: m.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
