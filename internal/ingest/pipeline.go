// Package ingest turns PDF handouts into embedded chunks in the vector store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayodejiades/ayodeji/internal/extract"
	"github.com/ayodejiades/ayodeji/internal/failure"
	"github.com/ayodejiades/ayodeji/internal/models"
	"github.com/ayodejiades/ayodeji/internal/storage"
)

// ChunkAppender appends embedded chunks; *vectorstore.Store implements it.
type ChunkAppender interface {
	Add(ctx context.Context, chunks []*models.Chunk) error
}

// Pipeline parses, splits and appends PDFs. Every call appends; ingesting the
// same file twice stores its chunks twice.
type Pipeline struct {
	storage  storage.Storage
	store    ChunkAppender
	splitter *Splitter
	logger   *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline writing document records to st and chunks to store.
func NewPipeline(st storage.Storage, store ChunkAppender, splitter *Splitter, opts ...Option) *Pipeline {
	p := &Pipeline{
		storage:  st,
		store:    store,
		splitter: splitter,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest reads the PDF at path and appends its chunks. Any failure is a
// failure.KindIngest error; chunks appended before it stay in the store.
func (p *Pipeline) Ingest(ctx context.Context, path string) (*models.IngestReport, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, failure.Ingest("ingest", fmt.Errorf("absolute path: %w", err))
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, failure.Ingest("ingest", fmt.Errorf("stat file: %w", err))
	}
	if !info.Mode().IsRegular() {
		return nil, failure.Ingest("ingest", fmt.Errorf("not a regular file: %s", absPath))
	}
	doc := &models.Document{
		Title:       filepath.Base(absPath),
		SourcePath:  absPath,
		SourceMtime: info.ModTime().UnixNano(),
		SourceSize:  info.Size(),
	}
	return p.ingest(ctx, absPath, doc)
}

// IngestUpload ingests a PDF received from a chat or the API. The file at
// path is a temporary copy, so only name is recorded.
func (p *Pipeline) IngestUpload(ctx context.Context, path, name string) (*models.IngestReport, error) {
	if name == "" {
		name = filepath.Base(path)
	}
	return p.ingest(ctx, path, &models.Document{Title: name})
}

func (p *Pipeline) ingest(ctx context.Context, path string, doc *models.Document) (*models.IngestReport, error) {
	p.logger.Debug("ingesting document", zap.String("path", path), zap.String("title", doc.Title))

	parsed, err := extract.ReadPDF(path)
	if err != nil {
		p.logger.Warn("failed to read PDF", zap.String("title", doc.Title), zap.Error(err))
		return nil, failure.Ingest("parse", err)
	}
	pieces := p.splitter.Split(Normalize(parsed.Text()))
	if len(pieces) == 0 {
		return nil, failure.Ingest("split", extract.ErrNoText)
	}

	doc.ID = uuid.New().String()
	doc.Pages = parsed.TotalPages
	if err := p.storage.CreateDocument(ctx, doc); err != nil {
		return nil, failure.Ingest("store document", err)
	}

	chunks := make([]*models.Chunk, len(pieces))
	for i, text := range pieces {
		chunks[i] = &models.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    text,
			ChunkIndex: i,
			Metadata: map[string]string{
				models.MetaSource: doc.SourcePath,
				models.MetaTitle:  doc.Title,
			},
		}
		if doc.SourcePath == "" {
			delete(chunks[i].Metadata, models.MetaSource)
		}
	}
	if err := p.store.Add(ctx, chunks); err != nil {
		p.logger.Error("failed to append chunks", zap.String("doc_id", doc.ID), zap.Error(err))
		return nil, failure.Ingest("append chunks", err)
	}
	if err := p.storage.MarkIngested(ctx, doc.ID); err != nil {
		return nil, failure.Ingest("mark ingested", err)
	}

	p.logger.Info("document ingested",
		zap.String("doc_id", doc.ID),
		zap.String("title", doc.Title),
		zap.Int("pages", doc.Pages),
		zap.Int("chunks", len(chunks)))
	return &models.IngestReport{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Pages:      doc.Pages,
		Chunks:     len(chunks),
	}, nil
}

// Unchanged reports whether path was already ingested with its current
// modification time and size.
func (p *Pipeline) Unchanged(ctx context.Context, path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return false, err
	}
	return p.storage.HasSource(ctx, absPath, info.ModTime().UnixNano(), info.Size())
}

// FindPDFs walks root and returns the regular files whose slash-separated path
// relative to root matches any of patterns. Matching ignores case.
func FindPDFs(root string, patterns []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absRoot)
	}
	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if Matches(rel, patterns) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Matches reports whether relPath matches any doublestar pattern.
func Matches(relPath string, patterns []string) bool {
	rel := strings.ToLower(filepath.ToSlash(relPath))
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), rel); ok {
			return true
		}
	}
	return false
}
