// Package main is the ayodeji CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ayodejiades/ayodeji/internal/bot"
	"github.com/ayodejiades/ayodeji/internal/cli"
	"github.com/ayodejiades/ayodeji/internal/config"
	"github.com/ayodejiades/ayodeji/internal/ingest"
	"github.com/ayodejiades/ayodeji/internal/models"
	"github.com/ayodejiades/ayodeji/internal/persona"
	"github.com/ayodejiades/ayodeji/internal/server"
	"github.com/ayodejiades/ayodeji/internal/storage"
	"github.com/ayodejiades/ayodeji/internal/watcher"
	"github.com/ayodejiades/ayodeji/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/ayodeji/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if it exists; when neither exists the config is
// built from defaults and the environment, which is how the bot runs on a
// PaaS. Returns the config and the path watch changes should be saved to.
func loadConfig(path string) (*config.Config, string, error) {
	if path != defaultConfigPath {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	fallback := filepath.Join(cwd, "config.yaml")
	for _, candidate := range []string{fallback, defaultConfigPath} {
		if _, statErr := os.Stat(candidate); statErr == nil {
			cfg, err := config.Load(candidate)
			if err != nil {
				return nil, "", err
			}
			return cfg, candidate, nil
		}
	}
	cfg, err := config.FromEnv(cwd)
	if err != nil {
		return nil, "", err
	}
	return cfg, fallback, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "ask":
		runAsk()
	case "transcribe":
		runTranscribe()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("ayodeji version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads the config and builds the logger for a subcommand.
func setup(configPath string, debug bool) (*config.Config, string, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolved, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := setup(*configPath, *debug)
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug || *debug))
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		logger.Error("CRITICAL: missing credentials", zap.Strings("missing", missing))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	messenger, err := newMessenger(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize messenger", zap.Error(err))
	}
	router := bot.NewRouter(components.Core, messenger,
		bot.WithPrivacyURL(cfg.Telegram.PrivacyURL),
		bot.WithMaxUpload(cfg.Ingest.MaxUploadBytes),
		bot.WithRouterLogger(logger))
	if cfg.Telegram.WebhookURL != "" {
		logger.Info("expecting telegram updates", zap.String("webhook", strings.TrimRight(cfg.Telegram.WebhookURL, "/")+"/webhook"))
	}

	watchSvc := watcher.New(
		cfg.Watch.Directories,
		cfg.Watch.Patterns,
		cfg.Watch.RecursiveOrDefault(),
		components.Pipeline,
		watcher.WithLogger(logger),
	)
	if err := watchSvc.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	go watchSvc.SyncExistingFiles()

	srv := server.NewServer(server.Deps{
		Bot:      router,
		Answerer: components.Generator,
		Uploader: components.Pipeline,
		Storage:  components.Storage,
		Index:    components.Store,
		Watch:    watchSvc,
	}, cfg, resolvedConfigPath, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	watchSvc.Stop()
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so flag.Parse sees them. Go's flag
// package stops at the first non-flag argument, so
// `ayodeji ask "when is the test" --output json` would otherwise leave
// --output unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// joinQuery joins positional args so a question works with or without quotes.
func joinQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := joinQuery(fs.Args())
	if query == "" {
		fmt.Println("Usage: ayodeji ask [flags] <question>")
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)

	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ans, err := components.Generator.Answer(ctx, query)
	if err != nil {
		logger.Debug("ask failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, persona.Reply(err))
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, ans, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	outputFormat := fs.String("output", "text", "output format: text or json")
	force := fs.Bool("force", false, "re-ingest files already ingested with the same size and mtime")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: ayodeji ingest [flags] <pdf-or-directory>")
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)
	path := fs.Arg(0)

	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()
	ctx := context.Background()

	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	files := []string{path}
	if info.IsDir() {
		files, err = ingest.FindPDFs(path, cfg.Watch.Patterns)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list handouts: %v\n", err)
			os.Exit(1)
		}
	}

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	reports, failed := ingestFiles(ctx, components.Pipeline, files, *force, newProgress(progressEnabled() && info.IsDir(), len(files)))
	if err := cli.WriteIngestReports(os.Stdout, reports, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d file(s) failed\n", failed)
		os.Exit(1)
	}
}

// fileIngester is the part of *ingest.Pipeline the ingest command uses.
type fileIngester interface {
	Unchanged(ctx context.Context, path string) (bool, error)
	Ingest(ctx context.Context, path string) (*models.IngestReport, error)
}

// ingestFiles ingests files in order. Files already ingested unchanged are
// skipped unless force is set. Failures are reported on stderr and counted.
func ingestFiles(ctx context.Context, p fileIngester, files []string, force bool, bar *progress) ([]*models.IngestReport, int) {
	var reports []*models.IngestReport
	failed := 0
	for _, f := range files {
		if !force {
			if same, err := p.Unchanged(ctx, f); err == nil && same {
				bar.Increment()
				continue
			}
		}
		report, err := p.Ingest(ctx, f)
		bar.Increment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", f, err)
			failed++
			continue
		}
		reports = append(reports, report)
	}
	bar.Finish()
	return reports, failed
}

func runTranscribe() {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: ayodeji transcribe [flags] <audio-file>")
		os.Exit(1)
	}
	cfg, _, logger := setup(*configPath, *debug)
	defer logger.Sync()
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	text, err := components.Transcriber.Transcribe(ctx, fs.Arg(0))
	if err != nil {
		logger.Debug("transcribe failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, persona.Reply(err))
		os.Exit(1)
	}
	fmt.Println(text)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseFormat(*outputFormat)

	cfg, _, logger := setup(*configPath, false)
	defer logger.Sync()
	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	status, err := collectStatus(ctx, cfg, components.Storage, components.Store.Size())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func collectStatus(ctx context.Context, cfg *config.Config, st storage.Storage, indexSize int) (*cli.Status, error) {
	docs, err := st.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	chunks, err := st.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	status := &cli.Status{
		Documents:          docs,
		Chunks:             chunks,
		VectorIndexSize:    indexSize,
		MissingCredentials: cfg.MissingCredentials(),
		Config: map[string]string{
			"storage_path":        cfg.Storage.Path,
			"embedding_provider":  cfg.Embedding.Provider,
			"embedding_model":     cfg.Embedding.Model,
			"chunk_size":          strconv.Itoa(cfg.Ingest.ChunkSize),
			"chunk_overlap":       strconv.Itoa(cfg.Ingest.OverlapOrDefault()),
			"top_k":               strconv.Itoa(cfg.Retrieval.TopK),
			"llm_model":           cfg.LLM.Model,
			"transcription_model": cfg.Transcription.Model,
		},
	}
	if n, err := storage.DiskUsageBytes(cfg.Storage.Path); err == nil {
		status.DiskUsageBytes = &n
	}
	return status, nil
}

func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	path := "config.yaml"
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if err := writeDefaultConfig(path, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s. Set TELEGRAM_BOT_TOKEN, GEMINI_API_KEY and GROQ_API_KEY in the environment.\n", path)
}

// writeDefaultConfig writes the default settings without credentials.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	var cfg config.Config
	config.ApplyDefaults(&cfg)
	return config.Save(path, &cfg)
}

func printUsage() {
	fmt.Println(`ayodeji - Telegram course rep that answers from your handouts

Usage:
  ayodeji server [flags]                 Start the webhook server, inbox watcher and operator API
  ayodeji ingest [flags] <pdf-or-dir>    Ingest a handout, or every PDF under a directory
  ayodeji ask [flags] <question>         Ask a question from the command line
  ayodeji transcribe [flags] <audio>     Transcribe a voice note
  ayodeji status [flags]                 Show store and configuration status
  ayodeji init [--force] [path]          Write a default config.yaml
  ayodeji version                        Show version
  ayodeji help                           Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/ayodeji/config.yaml,
                     then ./config.yaml, then defaults plus environment)
  --debug            Enable debug logging

Ingest Flags:
  --force            Re-ingest files already ingested unchanged
  --output string    Output format: text or json (default: text)

Ask/Status Flags:
  --output string    Output format: text or json (default: text)

Environment:
  TELEGRAM_BOT_TOKEN, GEMINI_API_KEY, GROQ_API_KEY, WEBHOOK_URL, CHROMA_DB_PATH, PORT

Examples:
  ayodeji server
  ayodeji ingest ./handouts
  ayodeji ask when is the CSC301 test
  ayodeji ask --output json "wetin be the MTH201 assignment"
  ayodeji transcribe note.ogg
  ayodeji status --output json`)
}
