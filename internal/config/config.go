package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is used when JONAS_API_URL is not set.
const DefaultAPIBaseURL = "http://localhost:8000"

// Config holds all client settings resolved from the environment.
type Config struct {
	// APIBaseURL is the Jonas backend base URL (no trailing slash).
	APIBaseURL string

	// DBPath overrides the local SQLite database location ("" = default XDG path).
	DBPath string

	// LogFile overrides the log file location ("" = default XDG path).
	LogFile string

	// RequestTimeout bounds every plain REST call.
	RequestTimeout time.Duration

	// StreamTimeout bounds the lesson-creation stream, which is slow by nature.
	StreamTimeout time.Duration

	// QuestionDebounce is the autosave delay while typing a free-text answer.
	QuestionDebounce time.Duration

	// EditDebounce is the autosave delay for every other field edit.
	EditDebounce time.Duration
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIBaseURL:       DefaultAPIBaseURL,
		RequestTimeout:   30 * time.Second,
		StreamTimeout:    5 * time.Minute,
		QuestionDebounce: 10 * time.Second,
		EditDebounce:     2 * time.Second,
	}
}

// Load resolves the configuration from a .env file (if present) and the
// process environment, falling back to defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Default()
	if v := os.Getenv("JONAS_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("JONAS_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JONAS_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	cfg.RequestTimeout = durationEnv("JONAS_REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.StreamTimeout = durationEnv("JONAS_STREAM_TIMEOUT", cfg.StreamTimeout)
	cfg.QuestionDebounce = durationEnv("JONAS_QUESTION_DEBOUNCE", cfg.QuestionDebounce)
	cfg.EditDebounce = durationEnv("JONAS_EDIT_DEBOUNCE", cfg.EditDebounce)
	return cfg
}

// durationEnv parses an env var as a duration ("10s") or a bare second count.
func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
