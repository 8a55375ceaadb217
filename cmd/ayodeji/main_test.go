package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ayodejiades/ayodeji/internal/config"
	"github.com/ayodejiades/ayodeji/internal/models"
	"github.com/ayodejiades/ayodeji/internal/storage"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after question are moved first",
			args:     []string{"when is the test", "--output", "json"},
			expected: []string{"--output", "json", "when is the test"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"--output", "json", "when is the test"},
			expected: []string{"--output", "json", "when is the test"},
		},
		{
			name:     "question only returns unchanged",
			args:     []string{"when is the test"},
			expected: []string{"when is the test"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"csc301", "venue", "-debug"},
			expected: []string{"-debug", "csc301", "venue"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJoinQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"timetable"}, "timetable"},
		{"multiple words", []string{"when", "is", "csc301"}, "when is csc301"},
		{"quoted phrase", []string{"when is csc301"}, "when is csc301"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinQuery(tt.args); got != tt.expected {
				t.Errorf("joinQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  port: 9090
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug || cfg.Server.Port != 9090 {
		t.Errorf("cwd config.yaml not applied: debug=%v port=%d", cfg.Debug, cfg.Server.Port)
	}
}

func TestLoadConfig_fallsBackToEnvironment(t *testing.T) {
	if _, err := os.Stat(defaultConfigPath); err == nil {
		t.Skip("a system config exists")
	}
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("GEMINI_API_KEY", "gemini-test")
	t.Setenv("PORT", "7000")

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(resolved) != "config.yaml" {
		t.Errorf("resolved = %s", resolved)
	}
	if cfg.LLM.APIKey != "gemini-test" || cfg.Server.Port != 7000 {
		t.Errorf("environment not applied: %+v %+v", cfg.LLM, cfg.Server)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Retrieval.TopK != 3 {
		t.Errorf("defaults not applied: %+v %+v", cfg.Ingest, cfg.Retrieval)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bot.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}

	if _, _, err := loadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing path should fail")
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "must-not-leak")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := writeDefaultConfig(path, false); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "must-not-leak") {
		t.Error("environment secrets written to config")
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.OverlapOrDefault() != 100 {
		t.Errorf("written config has %+v", cfg.Ingest)
	}

	if err := writeDefaultConfig(path, false); err == nil {
		t.Error("existing file should not be overwritten without force")
	}
	if err := writeDefaultConfig(path, true); err != nil {
		t.Errorf("force should overwrite: %v", err)
	}
}

type fakeFileIngester struct {
	unchanged map[string]bool
	fail      map[string]bool
	ingested  []string
}

func (f *fakeFileIngester) Unchanged(_ context.Context, path string) (bool, error) {
	return f.unchanged[path], nil
}

func (f *fakeFileIngester) Ingest(_ context.Context, path string) (*models.IngestReport, error) {
	if f.fail[path] {
		return nil, errors.New("broken pdf")
	}
	f.ingested = append(f.ingested, path)
	return &models.IngestReport{Title: filepath.Base(path), Chunks: 2}, nil
}

func TestIngestFiles(t *testing.T) {
	files := []string{"a.pdf", "b.pdf", "c.pdf"}
	f := &fakeFileIngester{
		unchanged: map[string]bool{"a.pdf": true},
		fail:      map[string]bool{"c.pdf": true},
	}
	reports, failed := ingestFiles(context.Background(), f, files, false, nil)
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
	if len(reports) != 1 || reports[0].Title != "b.pdf" {
		t.Errorf("reports = %+v", reports)
	}

	f.ingested = nil
	_, _ = ingestFiles(context.Background(), f, files, true, nil)
	if !reflect.DeepEqual(f.ingested, []string{"a.pdf", "b.pdf"}) {
		t.Errorf("force should ingest unchanged files, got %v", f.ingested)
	}
}

func TestCollectStatus(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHROMA_DB_PATH", "")
	cfg, err := config.FromEnv(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Telegram.BotToken = ""
	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	ctx := context.Background()
	if err := st.CreateDocument(ctx, &models.Document{ID: "d1", Title: "csc301.pdf"}); err != nil {
		t.Fatal(err)
	}

	status, err := collectStatus(ctx, cfg, st, 5)
	if err != nil {
		t.Fatal(err)
	}
	if status.Documents != 1 || status.Chunks != 0 || status.VectorIndexSize != 5 {
		t.Errorf("status = %+v", status)
	}
	if status.DiskUsageBytes == nil || *status.DiskUsageBytes == 0 {
		t.Error("disk usage should be reported for the storage directory")
	}
	if status.Config["top_k"] != "3" {
		t.Errorf("config summary = %v", status.Config)
	}
	found := false
	for _, m := range status.MissingCredentials {
		if m == "TELEGRAM_BOT_TOKEN" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing credentials = %v", status.MissingCredentials)
	}
}
