package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultBaseURL = "http://localhost:5000"

// RunConfig is built once at startup and passed by value to everything that
// needs it. Nothing mutates it after ParseArgs returns.
type RunConfig struct {
	BaseURL     string
	EchoJSON    bool
	Timeout     time.Duration
	ReportPath  string
	MetricsPath string
	LogLevel    string
}

// UsageError reports a command-line argument the runner does not accept.
type UsageError struct {
	Arg string
}

func (e *UsageError) Error() string {
	return "Unknown parameter passed: " + e.Arg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	// bare integers are seconds
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func homeDir() string {
	h, _ := os.UserHomeDir()
	return h
}

type FileConfig struct {
	BaseURL     string `json:"baseUrl"`
	EchoJSON    *bool  `json:"echoJson,omitempty"`
	TimeoutSec  int    `json:"timeoutSec,omitempty"`
	Report      string `json:"report,omitempty"`
	MetricsFile string `json:"metricsFile,omitempty"`
	LogLevel    string `json:"logLevel,omitempty"`
}

// Load reads .env from the working directory, then the environment, then the
// optional JSON config file. File values only fill settings whose environment
// variable is unset.
func Load() RunConfig {
	_ = godotenv.Load()
	return fromEnv()
}

// LoadDotenv is Load with an explicit list of dotenv files.
func LoadDotenv(paths ...string) (RunConfig, error) {
	if err := godotenv.Load(paths...); err != nil {
		return RunConfig{}, fmt.Errorf("load dotenv: %w", err)
	}
	return fromEnv(), nil
}

func fromEnv() RunConfig {
	cfg := RunConfig{
		BaseURL:     strings.TrimRight(envOr("MEALMAX_URL", DefaultBaseURL), "/"),
		EchoJSON:    envBoolOr("SMOKE_ECHO_JSON", false),
		Timeout:     envDurationOr("SMOKE_TIMEOUT", 0),
		ReportPath:  os.Getenv("SMOKE_REPORT"),
		MetricsPath: os.Getenv("SMOKE_METRICS_FILE"),
		LogLevel:    envOr("SMOKE_LOG_LEVEL", "warn"),
	}

	configPath := envOr("SMOKE_CONFIG", filepath.Join(homeDir(), ".mealmax-smoke", "config.json"))

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg
	}

	var fc FileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		slog.Warn("ignoring unreadable config file", "path", configPath, "err", err)
		return cfg
	}

	if fc.BaseURL != "" && os.Getenv("MEALMAX_URL") == "" {
		cfg.BaseURL = strings.TrimRight(fc.BaseURL, "/")
	}
	if fc.EchoJSON != nil && os.Getenv("SMOKE_ECHO_JSON") == "" {
		cfg.EchoJSON = *fc.EchoJSON
	}
	if fc.TimeoutSec > 0 && os.Getenv("SMOKE_TIMEOUT") == "" {
		cfg.Timeout = time.Duration(fc.TimeoutSec) * time.Second
	}
	if fc.Report != "" && os.Getenv("SMOKE_REPORT") == "" {
		cfg.ReportPath = fc.Report
	}
	if fc.MetricsFile != "" && os.Getenv("SMOKE_METRICS_FILE") == "" {
		cfg.MetricsPath = fc.MetricsFile
	}
	if fc.LogLevel != "" && os.Getenv("SMOKE_LOG_LEVEL") == "" {
		cfg.LogLevel = fc.LogLevel
	}

	return cfg
}

// ParseArgs applies command-line arguments to cfg. The only accepted argument
// is --echo-json; anything else yields a *UsageError.
func ParseArgs(cfg RunConfig, args []string) (RunConfig, error) {
	for _, a := range args {
		switch a {
		case "--echo-json":
			cfg.EchoJSON = true
		default:
			return cfg, &UsageError{Arg: a}
		}
	}
	return cfg, nil
}

// Validate checks that the base URL is an absolute http(s) URL.
func (c RunConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base url %q: missing host", c.BaseURL)
	}
	return nil
}

func (c RunConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
