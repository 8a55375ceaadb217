// Package storage defines the durable, append-only store for handouts and their chunk vectors.
package storage

import (
	"context"

	"github.com/ayodejiades/ayodeji/internal/models"
)

// Storage persists documents and embedded chunks. There is deliberately no
// update or delete: entries live as long as the storage directory.
type Storage interface {
	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)
	MarkIngested(ctx context.Context, id string) error
	HasSource(ctx context.Context, path string, mtime, size int64) (bool, error)

	// Chunk operations
	BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error
	GetChunks(ctx context.Context, ids []string) (map[string]*models.Chunk, error)
	ForEachEmbedding(ctx context.Context, fn func(id string, vec []float32) error) error

	// Stats
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
