package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the quiz client configuration.
type Config struct {
	// BaseURL is the root of the quiz backend serving /get_question and
	// /submit_answer. Default: http://localhost:5000.
	BaseURL string

	// OptionKeys are the four letters bound to option ordinals 0-3.
	OptionKeys string

	// FeedbackDelay is how long feedback stays up before the next question
	// is requested. Default: 3s.
	FeedbackDelay time.Duration

	// RequestTimeout bounds each HTTP request. Default: 10s.
	RequestTimeout time.Duration

	Retry RetryConfig
	Log   LogConfig
}

// RetryConfig configures bounded retry of question fetches.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// LogConfig selects where and how verbosely to log.
type LogConfig struct {
	File  string // empty: DefaultLogPath()
	Level string // debug, info, warn, error
}

// ServerConfig holds the bundled quiz server configuration.
type ServerConfig struct {
	Addr          string
	QuestionsPath string
	DBPath        string // optional SQLite bank; takes precedence over QuestionsPath
	CORSOrigins   []string
	Log           LogConfig
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:5000",
		OptionKeys:     "abcd",
		FeedbackDelay:  3 * time.Second,
		RequestTimeout: 10 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          ":5000",
		QuestionsPath: "questions.md",
		CORSOrigins:   []string{"http://localhost:5000"},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values. Unparseable values are reported.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if u := os.Getenv("EXAMHELPER_URL"); u != "" {
		cfg.BaseURL = u
	}
	if k := os.Getenv("EXAMHELPER_KEYS"); k != "" {
		cfg.OptionKeys = k
	}
	if err := envDuration("EXAMHELPER_FEEDBACK_DELAY", &cfg.FeedbackDelay); err != nil {
		return cfg, err
	}
	if err := envDuration("EXAMHELPER_REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return cfg, err
	}
	if v := os.Getenv("EXAMHELPER_FETCH_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("EXAMHELPER_FETCH_ATTEMPTS: %w", err)
		}
		cfg.Retry.MaxAttempts = n
	}
	if f := os.Getenv("EXAMHELPER_LOG_FILE"); f != "" {
		cfg.Log.File = f
	}
	if l := os.Getenv("EXAMHELPER_LOG_LEVEL"); l != "" {
		cfg.Log.Level = l
	}

	return cfg, cfg.Validate()
}

// ServerFromEnv builds a ServerConfig from environment variables.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServerConfig()

	if a := os.Getenv("EXAMHELPER_ADDR"); a != "" {
		cfg.Addr = a
	}
	if q := os.Getenv("EXAMHELPER_QUESTIONS"); q != "" {
		cfg.QuestionsPath = q
	}
	if d := os.Getenv("EXAMHELPER_DB"); d != "" {
		cfg.DBPath = d
	}
	if o := os.Getenv("EXAMHELPER_CORS_ORIGINS"); o != "" {
		cfg.CORSOrigins = SplitCSV(o)
	}
	if l := os.Getenv("EXAMHELPER_LOG_LEVEL"); l != "" {
		cfg.Log.Level = l
	}

	return cfg
}

// Validate checks the values that the quiz client depends on.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.FeedbackDelay <= 0 {
		return fmt.Errorf("feedback delay must be positive, got %s", c.FeedbackDelay)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("fetch attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

// DefaultLogPath resolves the log file path in priority order:
// 1. $XDG_STATE_HOME/examhelper/examhelper.log
// 2. ~/.local/state/examhelper/examhelper.log
func DefaultLogPath() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}

	p := filepath.Join(stateHome, "examhelper", "examhelper.log")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// SplitCSV splits a comma-separated list, dropping blanks.
func SplitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func envDuration(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
