package embedding

import (
	"testing"

	"github.com/ayodejiades/ayodeji/internal/config"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	logger := zap.NewNop()

	e, err := New(&config.EmbeddingConfig{Provider: config.ProviderHash, Dimensions: 32, CacheSize: 4}, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("positive cache size should wrap the embedder, got %T", e)
	}
	if e.Dimensions() != 32 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}

	e, err = New(&config.EmbeddingConfig{Provider: config.ProviderOpenAI, Model: "text-embedding-004", Dimensions: 768}, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*OpenAIEmbedder); !ok {
		t.Errorf("expected *OpenAIEmbedder, got %T", e)
	}

	if _, err := New(&config.EmbeddingConfig{Provider: "chroma"}, logger); err == nil {
		t.Error("expected error for unknown provider")
	}
}
