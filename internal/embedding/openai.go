package embedding

import (
	"context"
	"fmt"

	"github.com/ayodejiades/ayodeji/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingsAPI is the slice of the go-openai client the embedder uses.
type EmbeddingsAPI interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint (Gemini's by default).
type OpenAIEmbedder struct {
	client     EmbeddingsAPI
	model      string
	dimensions int
}

// NewOpenAIEmbedder returns an embedder for model; dimensions is the vector
// size the model is expected to return.
func NewOpenAIEmbedder(client EmbeddingsAPI, model string, dimensions int) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model, dimensions: dimensions}
}

// Embed generates an embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for texts in one request. Results are
// returned in input order regardless of the order the server lists them.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		if len(d.Embedding) != e.dimensions {
			return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(d.Embedding), e.dimensions)
		}
		vec := make([]float32, len(d.Embedding))
		copy(vec, d.Embedding)
		utils.NormalizeL2(vec)
		out[d.Index] = vec
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("embedding response missing index %d", i)
		}
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
