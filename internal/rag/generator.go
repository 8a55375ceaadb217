// Package rag answers questions from retrieved handout chunks, falling back
// to an ungrounded prompt when retrieval or grounded generation fails.
package rag

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ayodejiades/ayodeji/internal/failure"
	"github.com/ayodejiades/ayodeji/internal/llm"
	"github.com/ayodejiades/ayodeji/internal/models"
	"github.com/ayodejiades/ayodeji/internal/prompt"
	"github.com/ayodejiades/ayodeji/pkg/utils"
)

const DefaultTopK = 3

// Retriever returns the k chunks most similar to query; *vectorstore.Store implements it.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]*models.ScoredChunk, error)
}

// Generator runs retrieve, prompt and generate for one question.
type Generator struct {
	retriever Retriever
	model     llm.Model
	prompts   *prompt.Builder
	topK      int
	logger    *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTopK sets how many chunks are retrieved.
func WithTopK(k int) Option {
	return func(g *Generator) {
		if k > 0 {
			g.topK = k
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a Generator.
func NewGenerator(retriever Retriever, model llm.Model, opts ...Option) *Generator {
	g := &Generator{
		retriever: retriever,
		model:     model,
		prompts:   prompt.New(),
		topK:      DefaultTopK,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Answer returns the model's reply to query. When retrieval or the grounded
// call fails the model is asked again without context and the answer's Mode
// is models.ModeFallback. If that also fails the error is a
// failure.KindGeneration.
func (g *Generator) Answer(ctx context.Context, query string) (*models.Answer, error) {
	answer, err := g.grounded(ctx, query)
	if err == nil {
		return answer, nil
	}
	if ctx.Err() != nil {
		return nil, failure.Generation("answer", ctx.Err())
	}
	g.logger.Warn("grounded answer failed, falling back to model without context",
		zap.String("query", utils.Truncate(query, 80)), zap.Error(err))

	text, fbErr := g.fallback(ctx, query)
	if fbErr != nil {
		g.logger.Error("fallback answer failed", zap.Error(fbErr))
		return nil, failure.Generation("answer", errors.Join(err, fbErr))
	}
	return &models.Answer{Text: text, Mode: models.ModeFallback}, nil
}

func (g *Generator) grounded(ctx context.Context, query string) (*models.Answer, error) {
	hits, err := g.retriever.Search(ctx, query, g.topK)
	if err != nil {
		return nil, err
	}
	passages := make([]string, len(hits))
	for i, h := range hits {
		passages[i] = h.Chunk.Content
	}
	p, err := g.prompts.Build(query, passages...)
	if err != nil {
		return nil, err
	}
	text, err := g.model.Complete(ctx, p)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("grounded answer", zap.Int("passages", len(hits)))
	return &models.Answer{Text: text, Mode: models.ModeRAG, Sources: hits}, nil
}

func (g *Generator) fallback(ctx context.Context, query string) (string, error) {
	p, err := g.prompts.Fallback(query)
	if err != nil {
		return "", err
	}
	return g.model.Complete(ctx, p)
}
