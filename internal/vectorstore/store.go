// Package vectorstore is the embedding-backed chunk store the pipeline reads
// and appends to. SQLite is the durable record; a memory index built from it
// at open serves similarity search.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/ayodejiades/ayodeji/internal/embedding"
	"github.com/ayodejiades/ayodeji/internal/models"
	"github.com/ayodejiades/ayodeji/internal/storage"
	"github.com/ayodejiades/ayodeji/internal/vector"
	"github.com/ayodejiades/ayodeji/pkg/utils"
	"go.uber.org/zap"
)

const defaultBatchSize = 32

// Store appends embedded chunks and answers top-k similarity queries.
// It is safe for concurrent use.
type Store struct {
	storage   storage.Storage
	embedder  embedding.Embedder
	index     vector.Index
	batchSize int
	logger    *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithBatchSize sets how many chunks are embedded and committed together.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// Open loads every persisted vector into a fresh memory index. Rows whose
// dimension differs from the embedder's (left by a previous model) are
// skipped with a warning rather than failing startup.
func Open(ctx context.Context, st storage.Storage, embedder embedding.Embedder, opts ...Option) (*Store, error) {
	index, err := vector.NewMemoryIndex(embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("failed to create vector index: %w", err)
	}
	s := &Store{
		storage:   st,
		embedder:  embedder,
		index:     index,
		batchSize: defaultBatchSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	skipped := 0
	err = st.ForEachEmbedding(ctx, func(id string, vec []float32) error {
		if len(vec) != index.Dimensions() {
			skipped++
			return nil
		}
		return index.Add(ctx, []string{id}, [][]float32{vec})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}
	if skipped > 0 {
		s.logger.Warn("skipped stored vectors with a different dimension",
			zap.Int("skipped", skipped), zap.Int("dimensions", index.Dimensions()))
	}
	s.logger.Info("vector store opened", zap.Int("vectors", index.Size()))
	return s, nil
}

// Add embeds chunks and appends them, one batch at a time. A failure stops
// at the failing batch; earlier batches stay committed.
func (s *Store) Add(ctx context.Context, chunks []*models.Chunk) error {
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Content
		}
		vecs, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(vecs) != len(batch) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(batch))
		}
		ids := make([]string, len(batch))
		for i, ch := range batch {
			if len(vecs[i]) != s.index.Dimensions() {
				return fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(vecs[i]), s.index.Dimensions())
			}
			ch.Embedding = vecs[i]
			ids[i] = ch.ID
		}
		if err := s.storage.BatchCreateChunks(ctx, batch); err != nil {
			return fmt.Errorf("failed to store chunks: %w", err)
		}
		if err := s.index.Add(ctx, ids, vecs); err != nil {
			return fmt.Errorf("failed to index vectors: %w", err)
		}
		s.logger.Debug("chunk batch stored", zap.Int("from", start), zap.Int("to", end))
	}
	return nil
}

// Search embeds query and returns up to k chunks by descending similarity.
func (s *Store) Search(ctx context.Context, query string, k int) ([]*models.ScoredChunk, error) {
	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	hits, err := s.index.Search(ctx, qvec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	byID, err := s.storage.GetChunks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	out := make([]*models.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		ch, ok := byID[h.ID]
		if !ok {
			continue
		}
		out = append(out, &models.ScoredChunk{Chunk: ch, Score: h.Score})
	}
	s.logger.Debug("vector search",
		zap.String("query", utils.Truncate(query, 80)),
		zap.Int("k", k),
		zap.Int("hits", len(out)))
	return out, nil
}

// Size returns the number of searchable vectors.
func (s *Store) Size() int {
	return s.index.Size()
}

// Dimensions returns the embedding dimension of the store.
func (s *Store) Dimensions() int {
	return s.index.Dimensions()
}

// Close releases the in-memory index. The storage and embedder are owned by the caller.
func (s *Store) Close() error {
	return s.index.Close()
}
