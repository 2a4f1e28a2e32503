// Package config parses command line flags and INVOICE_EXTRACTOR_* environment
// variables into a Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

// EnvVarPrefix prefixes every environment variable mirroring a flag
const EnvVarPrefix = "INVOICE_EXTRACTOR"

// Generator names accepted by --generator
const (
	GeneratorGemini = "gemini"
	GeneratorOllama = "ollama"
)

// Config holds the process configuration
type Config struct {
	Port         int
	UploadDir    string
	HistoryDB    string
	Generator    string
	GeminiKey    string
	GeminiModel  string
	OllamaURL    string
	OllamaModel  string
	ModelTimeout time.Duration
	MaxUploadMB  int
	StrictErrors bool
	AuthUser     string
	AuthPass     string
	LogLevel     string
	LogFormat    string
	ShowVersion  bool
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// UsageError carries the flag help alongside a parse or validation error
type UsageError struct {
	Usage string
	Err   error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// Load parses args and the environment
func Load(args []string) (*Config, error) {
	fs := ff.NewFlagSet("invoice-extractor")
	var (
		port         = fs.IntLong("port", 5000, "HTTP server port")
		uploadDir    = fs.StringLong("upload-dir", "uploads", "Directory for staged uploads")
		historyDB    = fs.StringLong("history-db", "", "Extraction history database path (disabled when empty)")
		generator    = fs.StringLong("generator", GeneratorGemini, "Model backend: 'gemini' or 'ollama'")
		geminiKey    = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GOOGLE_API_KEY / GEMINI_API_KEY)")
		geminiModel  = fs.StringLong("gemini-model", "gemini-2.5-flash-image", "Google Gemini model name")
		ollamaURL    = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel  = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		modelTimeout = fs.DurationLong("model-timeout", 60*time.Second, "Timeout for a single model call (0 disables)")
		maxUploadMB  = fs.IntLong("max-upload-mb", 50, "Maximum upload size in megabytes")
		strictErrors = fs.BoolLong("strict-errors", "Map extraction failures to error status codes instead of 200")
		authUser     = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass     = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logLevel     = fs.StringLong("log-level", "info", "Log level: debug, info, warn, error")
		logFormat    = fs.StringLong("log-format", "text", "Log format: text or json")
		showVersion  = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(EnvVarPrefix)); err != nil {
		return nil, &UsageError{Usage: fmt.Sprint(ffhelp.Flags(fs)), Err: err}
	}

	cfg := &Config{
		Port:         *port,
		UploadDir:    *uploadDir,
		HistoryDB:    *historyDB,
		Generator:    *generator,
		GeminiKey:    *geminiKey,
		GeminiModel:  *geminiModel,
		OllamaURL:    *ollamaURL,
		OllamaModel:  *ollamaModel,
		ModelTimeout: *modelTimeout,
		MaxUploadMB:  *maxUploadMB,
		StrictErrors: *strictErrors,
		AuthUser:     *authUser,
		AuthPass:     *authPass,
		LogLevel:     *logLevel,
		LogFormat:    *logFormat,
		ShowVersion:  *showVersion,
	}

	if cfg.GeminiKey == "" {
		cfg.GeminiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if cfg.GeminiKey == "" {
		cfg.GeminiKey = os.Getenv("GEMINI_API_KEY")
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, &UsageError{Usage: fmt.Sprint(ffhelp.Flags(fs)), Err: err}
	}
	return cfg, nil
}

// Validate checks values that flag parsing cannot
func (c *Config) Validate() error {
	var errs []error
	switch c.Generator {
	case GeneratorGemini:
		if c.GeminiKey == "" {
			errs = append(errs, errors.New("gemini API key is required: set --gemini-key or GOOGLE_API_KEY"))
		}
	case GeneratorOllama:
		if c.OllamaURL == "" {
			errs = append(errs, errors.New("ollama URL is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid generator %q: must be %s or %s", c.Generator, GeneratorGemini, GeneratorOllama))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.UploadDir == "" {
		errs = append(errs, errors.New("upload directory is required"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadMB))
	}
	if c.ModelTimeout < 0 {
		errs = append(errs, fmt.Errorf("model timeout must not be negative, got %s", c.ModelTimeout))
	}
	return errors.Join(errs...)
}
