// Package models defines core data structures for handouts, chunks, and answers.
package models

import "time"

// Document is one ingested handout. Re-ingesting the same file creates a new Document.
type Document struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	SourcePath  string    `json:"source_path,omitempty" db:"source_path"`
	SourceMtime int64     `json:"source_mtime,omitempty" db:"source_mtime"`
	SourceSize  int64     `json:"source_size,omitempty" db:"source_size"`
	Pages       int       `json:"pages" db:"pages"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Chunk is a bounded span of handout text and the unit of retrieval.
// Chunks are immutable once stored.
type Chunk struct {
	ID         string            `json:"id" db:"id"`
	DocumentID string            `json:"document_id" db:"document_id"`
	Content    string            `json:"content" db:"content"`
	ChunkIndex int               `json:"chunk_index" db:"chunk_index"`
	Metadata   map[string]string `json:"metadata,omitempty" db:"metadata"`
	Embedding  []float32         `json:"-" db:"embedding"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}

// Metadata keys set by ingestion.
const (
	MetaSource = "source"
	MetaTitle  = "title"
)
