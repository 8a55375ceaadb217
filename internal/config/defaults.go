package config

import "time"

// Embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderONNX   = "onnx"
	ProviderHash   = "hash"
)

// Gemini exposes an OpenAI-compatible surface; both the chat model and the
// embedder talk to it by default.
const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	defaultTelegramAPI   = "https://api.telegram.org/bot%s/%s"
)

// Defaults for settings where zero is meaningful and so cannot mean "unset".
const (
	DefaultTemperature  float32 = 0.7
	DefaultChunkOverlap         = 100
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Telegram.APIEndpoint == "" {
		cfg.Telegram.APIEndpoint = defaultTelegramAPI
	}
	if cfg.Telegram.PrivacyURL == "" {
		cfg.Telegram.PrivacyURL = "https://your-website.com/privacy"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "chroma_db"
	}
	if cfg.Storage.DatabaseFile == "" {
		cfg.Storage.DatabaseFile = "ayodeji.db"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderOpenAI
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-004"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1000
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = defaultGeminiBaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gemini-3-flash-preview"
	}
	if cfg.LLM.Temperature == nil {
		t := DefaultTemperature
		cfg.LLM.Temperature = &t
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.Transcription.BaseURL == "" {
		cfg.Transcription.BaseURL = defaultGroqBaseURL
	}
	if cfg.Transcription.Model == "" {
		cfg.Transcription.Model = "whisper-large-v3"
	}
	if cfg.Transcription.FFmpegPath == "" {
		cfg.Transcription.FFmpegPath = "ffmpeg"
	}
	if cfg.Transcription.Timeout == 0 {
		cfg.Transcription.Timeout = 60 * time.Second
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 1000
	}
	if cfg.Ingest.ChunkOverlap == nil {
		o := DefaultChunkOverlap
		cfg.Ingest.ChunkOverlap = &o
	}
	if cfg.Ingest.MaxUploadBytes == 0 {
		// Telegram bots cannot download files above 20MB.
		cfg.Ingest.MaxUploadBytes = 20 << 20
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Watch.Patterns == nil {
		cfg.Watch.Patterns = []string{"**/*.pdf"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
