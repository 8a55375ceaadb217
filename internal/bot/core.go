// Package bot turns Telegram updates into replies. Core is the text-only
// facade over the pipelines; Router dispatches updates to it and sends the
// replies through a Messenger.
package bot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ayodejiades/ayodeji/internal/models"
	"github.com/ayodejiades/ayodeji/internal/persona"
	"github.com/ayodejiades/ayodeji/pkg/utils"
)

// Answerer answers a question; *rag.Generator implements it.
type Answerer interface {
	Answer(ctx context.Context, query string) (*models.Answer, error)
}

// Ingester ingests an uploaded PDF; *ingest.Pipeline implements it.
type Ingester interface {
	IngestUpload(ctx context.Context, path, name string) (*models.IngestReport, error)
}

// Transcriber transcribes an audio file; *transcribe.Transcriber implements it.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Core maps pipeline results and failures to persona replies. Its methods
// never return an empty reply.
type Core struct {
	answerer    Answerer
	ingester    Ingester
	transcriber Transcriber
	logger      *zap.Logger
}

// NewCore creates a Core. logger may be nil.
func NewCore(answerer Answerer, ingester Ingester, transcriber Transcriber, logger *zap.Logger) *Core {
	return &Core{
		answerer:    answerer,
		ingester:    ingester,
		transcriber: transcriber,
		logger:      utils.OrNop(logger),
	}
}

// Ask returns the reply to a question.
func (c *Core) Ask(ctx context.Context, query string) string {
	ans, err := c.answerer.Answer(ctx, query)
	if err != nil {
		c.logger.Error("answer failed", zap.String("query", utils.Truncate(query, 80)), zap.Error(err))
		return persona.Reply(err)
	}
	if strings.TrimSpace(ans.Text) == "" {
		return persona.BrainFailure
	}
	c.logger.Debug("answered", zap.String("mode", string(ans.Mode)), zap.Int("sources", len(ans.Sources)))
	return ans.Text
}

// Ingest ingests the PDF at path, recorded under name, and returns the reply.
func (c *Core) Ingest(ctx context.Context, path, name string) string {
	report, err := c.ingester.IngestUpload(ctx, path, name)
	if err != nil {
		c.logger.Error("ingest failed", zap.String("name", name), zap.Error(err))
		return persona.Reply(err)
	}
	c.logger.Info("upload ingested", zap.String("title", report.Title), zap.Int("chunks", report.Chunks))
	return persona.Ingested
}

// Transcribe returns the transcript of the audio at path and true, or the
// not-heard apology and false.
func (c *Core) Transcribe(ctx context.Context, path string) (string, bool) {
	text, err := c.transcriber.Transcribe(ctx, path)
	if err != nil {
		c.logger.Warn("transcription failed", zap.Error(err))
		return persona.Reply(err), false
	}
	return text, true
}
