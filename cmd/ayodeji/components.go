package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ayodejiades/ayodeji/internal/aiclient"
	"github.com/ayodejiades/ayodeji/internal/bot"
	"github.com/ayodejiades/ayodeji/internal/config"
	"github.com/ayodejiades/ayodeji/internal/embedding"
	"github.com/ayodejiades/ayodeji/internal/ingest"
	"github.com/ayodejiades/ayodeji/internal/llm"
	"github.com/ayodejiades/ayodeji/internal/rag"
	"github.com/ayodejiades/ayodeji/internal/storage"
	"github.com/ayodejiades/ayodeji/internal/transcribe"
	"github.com/ayodejiades/ayodeji/internal/vectorstore"
)

const telegramTimeout = 60 * time.Second

// Components holds initialized services.
type Components struct {
	Storage     storage.Storage
	Embedder    embedding.Embedder
	Store       *vectorstore.Store
	Pipeline    *ingest.Pipeline
	Generator   *rag.Generator
	Transcriber *transcribe.Transcriber
	Core        *bot.Core
}

// Close releases the store, embedder and database in reverse order of creation.
func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{}
	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.Storage = st

	embedder, err := embedding.New(&cfg.Embedding, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Embedder = embedder

	store, err := vectorstore.Open(ctx, st, embedder,
		vectorstore.WithLogger(logger),
		vectorstore.WithBatchSize(cfg.Embedding.BatchSize))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	c.Store = store

	splitter, err := ingest.NewSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.OverlapOrDefault())
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Pipeline = ingest.NewPipeline(st, store, splitter, ingest.WithLogger(logger))

	chat := aiclient.New(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	model := llm.NewChatModel(chat, cfg.LLM.Model, cfg.LLM.TemperatureOrDefault())
	c.Generator = rag.NewGenerator(store, model,
		rag.WithTopK(cfg.Retrieval.TopK),
		rag.WithLogger(logger))

	speech := aiclient.New(cfg.Transcription.APIKey, cfg.Transcription.BaseURL, cfg.Transcription.Timeout)
	c.Transcriber = transcribe.New(
		transcribe.NewFFmpeg(cfg.Transcription.FFmpegPath),
		transcribe.NewWhisper(speech, cfg.Transcription.Model),
		transcribe.WithLogger(logger))

	c.Core = bot.NewCore(c.Generator, c.Pipeline, c.Transcriber, logger)
	return c, nil
}

// newMessenger returns the Telegram messenger, or a LogMessenger when no bot
// token is configured so the webhook and operator API still run.
func newMessenger(cfg *config.Config, logger *zap.Logger) (bot.Messenger, error) {
	if cfg.Telegram.BotToken == "" {
		logger.Warn("no telegram bot token; replies will only be logged")
		return bot.NewLogMessenger(logger), nil
	}
	m, err := bot.NewTelegramMessenger(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint,
		&http.Client{Timeout: telegramTimeout}, cfg.Ingest.MaxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	logger.Info("telegram bot connected", zap.String("username", m.Username()))
	return m, nil
}
