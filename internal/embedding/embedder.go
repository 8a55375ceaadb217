// Package embedding turns chunk and query text into vectors.
package embedding

import (
	"context"
	"fmt"

	"github.com/ayodejiades/ayodeji/internal/aiclient"
	"github.com/ayodejiades/ayodeji/internal/config"
	"go.uber.org/zap"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// New builds the embedder selected by cfg.Provider, wrapped in an LRU cache
// when cfg.CacheSize is positive.
func New(cfg *config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	var e Embedder
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.APIKey == "" {
			logger.Warn("embedding api key is empty; requests will fail until GEMINI_API_KEY is set")
		}
		client := aiclient.New(cfg.APIKey, cfg.BaseURL, cfg.Timeout)
		e = NewOpenAIEmbedder(client, cfg.Model, cfg.Dimensions)
	case config.ProviderONNX:
		onnx, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize onnx embedder: %w", err)
		}
		e = onnx
	case config.ProviderHash:
		e = NewHashEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	logger.Info("embedder initialized",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", e.Dimensions()))
	if cfg.CacheSize > 0 {
		e = NewCachedEmbedder(e, cfg.CacheSize)
	}
	return e, nil
}
