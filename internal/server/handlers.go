package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ayodejiades/ayodeji/internal/config"
	"github.com/ayodejiades/ayodeji/internal/failure"
	"github.com/ayodejiades/ayodeji/internal/models"
	"github.com/ayodejiades/ayodeji/internal/persona"
	"github.com/ayodejiades/ayodeji/internal/storage"
	"github.com/ayodejiades/ayodeji/pkg/utils"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"message": persona.Online})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWebhook always answers 200 so Telegram does not redeliver an update
// that failed on our side. The update runs detached from the request so a
// dropped connection cannot swallow the reply.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.Warn("invalid webhook payload", zap.Error(err))
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "error"})
		return
	}
	s.logger.Debug("webhook update", zap.Int("update_id", update.UpdateID))
	if err := s.deps.Bot.HandleUpdate(context.WithoutCancel(r.Context()), update); err != nil {
		s.logger.Error("error handling update", zap.Int("update_id", update.UpdateID), zap.Error(err))
		s.respondJSON(w, http.StatusOK, map[string]string{"status": "error"})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("ask request", zap.String("query", utils.Truncate(req.Query, 80)))
	ans, err := s.deps.Answerer.Answer(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusBadGateway, persona.Reply(err))
		return
	}
	s.respondJSON(w, http.StatusOK, ans)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.config.Ingest.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()
	if header.Size > maxBytes {
		s.respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") &&
		!strings.Contains(header.Header.Get("Content-Type"), "pdf") {
		s.respondError(w, http.StatusUnsupportedMediaType, persona.PDFOnly)
		return
	}

	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	_, err = io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to stage upload")
		return
	}

	s.logger.Debug("upload request", zap.String("name", header.Filename), zap.Int64("size", header.Size))
	report, err := s.deps.Uploader.IngestUpload(r.Context(), tmpPath, filepath.Base(header.Filename))
	if err != nil {
		s.logger.Error("upload ingest failed", zap.String("name", header.Filename), zap.Error(err))
		status := http.StatusInternalServerError
		if failure.Is(err, failure.KindIngest) {
			status = http.StatusUnprocessableEntity
		}
		s.respondError(w, status, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, report)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	docs, err := s.deps.Storage.ListDocuments(r.Context(), offset, limit)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "offset": offset, "limit": limit})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := s.deps.Storage.GetDocument(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.deps.Storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.deps.Storage.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"documents":         docCount,
		"chunks":            chunkCount,
		"vector_index_size": s.deps.Index.Size(),
	}
	if diskBytes, err := storage.DiskUsageBytes(s.config.Storage.Path); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = map[string]interface{}{
		"embedding_provider":   s.config.Embedding.Provider,
		"embedding_model":      s.config.Embedding.Model,
		"embedding_dimensions": s.deps.Index.Dimensions(),
		"chunk_size":           s.config.Ingest.ChunkSize,
		"chunk_overlap":        s.config.Ingest.OverlapOrDefault(),
		"top_k":                s.config.Retrieval.TopK,
		"llm_model":            s.config.LLM.Model,
		"transcription_model":  s.config.Transcription.Model,
		"database_path":        s.config.Storage.DatabasePath(),
		"missing_credentials":  s.config.MissingCredentials(),
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWatchDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.deps.Watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.deps.Watch.Directories()})
}

type watchAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleWatchDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.deps.Watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req watchAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("watch add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.deps.Watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("watch add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

// handleWatchDirectoriesRemove stops watching a directory. Handouts already
// ingested from it stay in the store.
func (s *Server) handleWatchDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.deps.Watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path query parameter is required")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err := s.deps.Watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("watch remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistWatchDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistWatchDirectories() {
	if s.configPath == "" {
		return
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()
	dirs := s.deps.Watch.Directories()
	s.config.Watch.Directories = dirs
	if err := config.SaveWatchDirectories(s.configPath, dirs); err != nil {
		s.logger.Warn("failed to persist watch config", zap.Error(err))
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
