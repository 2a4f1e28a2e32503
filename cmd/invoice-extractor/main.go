package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zombor/invoice-extractor/internal/config"
	"github.com/zombor/invoice-extractor/internal/extraction"
	"github.com/zombor/invoice-extractor/internal/invoice"
	"github.com/zombor/invoice-extractor/internal/logging"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

const shutdownTimeout = 30 * time.Second

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "%s\n", usageErr.Usage)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if cfg.ShowVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr)

	if err := run(cfg); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer generator.Close()

	// Initialize staging
	slog.Info("Initializing upload staging...", "path", cfg.UploadDir)
	staging, err := invoice.NewLocalStaging(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("initializing staging: %w", err)
	}

	// History stays a nil interface when disabled
	var history invoice.History
	if cfg.HistoryDB != "" {
		slog.Info("Initializing extraction history...", "path", cfg.HistoryDB)
		db, err := invoice.NewBoltHistory(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("initializing history: %w", err)
		}
		defer db.Close()
		history = db
	}

	adapter := extraction.NewAdapter(generator, cfg.ModelTimeout)
	service := invoice.NewService(staging, adapter, history)
	server := invoice.NewServer(service, invoice.Options{
		BasicAuth: invoice.BasicAuth{
			Username: cfg.AuthUser,
			Password: cfg.AuthPass,
		},
		MaxUploadBytes: cfg.MaxUploadBytes(),
		StrictErrors:   cfg.StrictErrors,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	slog.Info("Server started",
		"address", fmt.Sprintf("http://localhost%s", addr),
		"version", version,
		"strict_errors", cfg.StrictErrors,
		"history", cfg.HistoryDB != "",
	)
	if cfg.AuthUser != "" || cfg.AuthPass != "" {
		slog.Info("Basic auth enabled", "user", cfg.AuthUser)
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// newGenerator builds the model backend selected by --generator
func newGenerator(ctx context.Context, cfg *config.Config) (extraction.Generator, error) {
	switch cfg.Generator {
	case config.GeneratorGemini:
		slog.Info("Initializing Gemini generator...", "model", cfg.GeminiModel)
		gemini, err := extraction.NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("initializing Gemini: %w", err)
		}
		return gemini, nil
	case config.GeneratorOllama:
		slog.Info("Initializing Ollama generator...", "url", cfg.OllamaURL, "model", cfg.OllamaModel)
		ollama, err := extraction.NewOllama(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			return nil, fmt.Errorf("initializing Ollama: %w", err)
		}
		return ollama, nil
	default:
		return nil, fmt.Errorf("invalid generator type %q", cfg.Generator)
	}
}
