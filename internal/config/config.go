// Package config provides configuration loading and structs for the Ayodeji bot.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug         bool                `yaml:"debug"`
	Server        ServerConfig        `yaml:"server"`
	Telegram      TelegramConfig      `yaml:"telegram"`
	Storage       StorageConfig       `yaml:"storage"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	LLM           LLMConfig           `yaml:"llm"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Ingest        IngestConfig        `yaml:"ingest"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Watch         WatchConfig         `yaml:"watch"`
}

// ServerConfig holds HTTP server settings for the webhook and operator API.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TelegramConfig holds bot credentials and endpoints.
type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	WebhookURL  string `yaml:"webhook_url"`
	APIEndpoint string `yaml:"api_endpoint"`
	PrivacyURL  string `yaml:"privacy_url"`
}

// StorageConfig holds the persistence directory of the vector store.
type StorageConfig struct {
	Path         string `yaml:"path"`
	DatabaseFile string `yaml:"database_file"`
}

// DatabasePath returns the SQLite file inside the storage directory.
func (s StorageConfig) DatabasePath() string {
	return filepath.Join(s.Path, s.DatabaseFile)
}

// EmbeddingConfig selects and tunes the embedding backend.
// Provider is one of "openai" (any OpenAI-compatible endpoint), "onnx" or "hash".
type EmbeddingConfig struct {
	Provider   string        `yaml:"provider"`
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	BatchSize  int           `yaml:"batch_size"`
	CacheSize  int           `yaml:"cache_size"`
	ModelPath  string        `yaml:"model_path"`
	MaxTokens  int           `yaml:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout"`
}

// LLMConfig holds chat completion settings.
type LLMConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature *float32      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// TemperatureOrDefault returns the sampling temperature; 0 is a valid setting.
func (l *LLMConfig) TemperatureOrDefault() float32 {
	if l.Temperature != nil {
		return *l.Temperature
	}
	return DefaultTemperature
}

// TranscriptionConfig holds speech-to-text settings.
type TranscriptionConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	FFmpegPath string        `yaml:"ffmpeg_path"`
	Timeout    time.Duration `yaml:"timeout"`
}

// IngestConfig holds chunking settings. Sizes are counted in characters.
type IngestConfig struct {
	ChunkSize      int   `yaml:"chunk_size"`
	ChunkOverlap   *int  `yaml:"chunk_overlap"`
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// OverlapOrDefault returns the chunk overlap; 0 disables overlap.
func (i *IngestConfig) OverlapOrDefault() int {
	if i.ChunkOverlap != nil {
		return *i.ChunkOverlap
	}
	return DefaultChunkOverlap
}

// RetrievalConfig holds query-time settings.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// WatchConfig holds handout inbox settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Patterns    []string `yaml:"patterns"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, applies defaults
// and environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := finish(&cfg, filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a config from defaults and the environment only. Relative
// paths resolve against dir (usually the working directory).
func FromEnv(dir string) (*Config, error) {
	var cfg Config
	if err := finish(&cfg, dir); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func finish(cfg *Config, configDir string) error {
	ApplyDefaults(cfg)
	ApplyEnv(cfg)

	cfg.Storage.Path = expandPath(cfg.Storage.Path, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
	return cfg.Validate()
}

// ApplyEnv overrides credentials and deployment settings from the environment.
// Set variables win over file values.
func ApplyEnv(cfg *Config) {
	if v, ok := lookup("TELEGRAM_BOT_TOKEN"); ok {
		cfg.Telegram.BotToken = v
	}
	if v, ok := lookup("WEBHOOK_URL"); ok {
		cfg.Telegram.WebhookURL = v
	}
	if v, ok := lookup("GEMINI_API_KEY"); ok {
		cfg.LLM.APIKey = v
		if cfg.Embedding.Provider == ProviderOpenAI {
			cfg.Embedding.APIKey = v
		}
	}
	if v, ok := lookup("GROQ_API_KEY"); ok {
		cfg.Transcription.APIKey = v
	}
	if v, ok := lookup("CHROMA_DB_PATH"); ok {
		cfg.Storage.Path = v
	}
	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Validate reports settings that would make the pipeline misbehave.
func (c *Config) Validate() error {
	var errs []error
	if overlap := c.Ingest.OverlapOrDefault(); overlap < 0 || overlap >= c.Ingest.ChunkSize {
		errs = append(errs, fmt.Errorf("ingest.chunk_overlap (%d) must be in [0, ingest.chunk_size (%d))",
			overlap, c.Ingest.ChunkSize))
	}
	if t := c.LLM.TemperatureOrDefault(); t < 0 || t > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature (%v) must be in [0, 2]", t))
	}
	if c.Retrieval.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be positive"))
	}
	switch c.Embedding.Provider {
	case ProviderOpenAI, ProviderONNX, ProviderHash:
	default:
		errs = append(errs, fmt.Errorf("unknown embedding.provider %q", c.Embedding.Provider))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// MissingCredentials lists the environment variable names of required secrets
// that are not configured. An empty result means every backend can authenticate.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Telegram.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.LLM.APIKey == "" || (c.Embedding.Provider == ProviderOpenAI && c.Embedding.APIKey == "") {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.Transcription.APIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	return missing
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" (or bare names)
// are relative to configDir; "~/" paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(configDir, path)
}

// SaveWatchDirectories rewrites watch.directories in the file at path and
// leaves the other settings as the file had them, so values that came from
// the environment are never written out. A missing file is created.
func SaveWatchDirectories(path string, dirs []string) error {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("failed to read config: %w", err)
	}
	cfg.Watch.Directories = dirs
	return Save(path, &cfg)
}
