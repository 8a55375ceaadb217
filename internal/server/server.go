// Package server exposes the Telegram webhook and a small operator API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ayodejiades/ayodeji/internal/config"
	"github.com/ayodejiades/ayodeji/internal/models"
	"github.com/ayodejiades/ayodeji/internal/storage"
	"github.com/ayodejiades/ayodeji/pkg/utils"
)

// Dispatcher handles one Telegram update; *bot.Router implements it.
type Dispatcher interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// Answerer answers a question; *rag.Generator implements it.
type Answerer interface {
	Answer(ctx context.Context, query string) (*models.Answer, error)
}

// Uploader ingests an uploaded PDF; *ingest.Pipeline implements it.
type Uploader interface {
	IngestUpload(ctx context.Context, path, name string) (*models.IngestReport, error)
}

// IndexStats reports on the vector index; *vectorstore.Store implements it.
type IndexStats interface {
	Size() int
	Dimensions() int
}

// WatchService manages the handout inbox directories at runtime.
type WatchService interface {
	Directories() []string
	AddDirectory(path string, syncExisting bool) error
	RemoveDirectory(path string) error
}

// Deps are the collaborators the server routes to. Watch may be nil.
type Deps struct {
	Bot      Dispatcher
	Answerer Answerer
	Uploader Uploader
	Storage  storage.Storage
	Index    IndexStats
	Watch    WatchService
}

// Server is the HTTP server for the webhook and operator API.
type Server struct {
	deps       Deps
	config     *config.Config
	configPath string
	configMu   sync.Mutex
	logger     *zap.Logger
	server     *http.Server
}

// NewServer creates a server. configPath is where watch directory changes are
// persisted; empty disables persistence.
func NewServer(deps Deps, cfg *config.Config, configPath string, logger *zap.Logger) *Server {
	return &Server{
		deps:       deps,
		config:     cfg,
		configPath: configPath,
		logger:     utils.OrNop(logger),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Updates are bounded by the LLM, transcription and download timeouts,
	// and a 504 here would only make Telegram redeliver.
	r.Post("/webhook", s.handleWebhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/", s.handleHome)
		r.Get("/health", s.handleHealth)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/status", s.handleStatus)
			r.Post("/ask", s.handleAsk)
			r.Post("/documents", s.handleUpload)
			r.Get("/documents", s.handleListDocuments)
			r.Get("/documents/{id}", s.handleGetDocument)
			r.Get("/watch/directories", s.handleWatchDirectoriesList)
			r.Post("/watch/directories", s.handleWatchDirectoriesAdd)
			r.Delete("/watch/directories", s.handleWatchDirectoriesRemove)
		})
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
