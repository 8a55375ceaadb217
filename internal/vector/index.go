// Package vector provides the in-memory similarity index over chunk embeddings.
package vector

import "context"

// Index is an append-only similarity index keyed by chunk ID.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Size() int
	Dimensions() int
	Close() error
}

// Result is a single search hit (ID is the chunk ID).
type Result struct {
	ID    string
	Score float64 // cosine similarity in [-1, 1]
}
