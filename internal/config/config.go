package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config contains all runtime settings for the synthesis HUD service.
type Config struct {
	BindAddr                 string        `yaml:"bind_addr"`
	ShutdownTimeout          time.Duration `yaml:"shutdown_timeout"`
	SessionInactivityTimeout time.Duration `yaml:"session_inactivity_timeout"`
	MetricsNamespace         string        `yaml:"metrics_namespace"`
	AllowAnyOrigin           bool          `yaml:"allow_any_origin"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	SynthProvider  string        `yaml:"synth_provider"`
	MurfAPIKey     string        `yaml:"-"`
	MurfBaseURL    string        `yaml:"murf_base_url"`
	MurfVoiceID    string        `yaml:"murf_voice_id"`
	MurfTimeout    time.Duration `yaml:"murf_timeout"`
	MurfMaxRetries int           `yaml:"murf_max_retries"`
	MockClipLimit  int           `yaml:"mock_clip_limit"`

	ConsoleEntrance       time.Duration `yaml:"console_entrance"`
	ConsoleDwell          time.Duration `yaml:"console_dwell"`
	ConsoleRequestTimeout time.Duration `yaml:"console_request_timeout"`

	DatabaseURL      string `yaml:"database_url"`
	HistoryRedactPII bool   `yaml:"history_redact_pii"`

	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	TraceStdout bool   `yaml:"trace_stdout"`
	ServiceName string `yaml:"service_name"`
}

// Load reads .env, an optional YAML file named by HUDSYNTH_CONFIG, then
// environment variables, which win over both.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		BindAddr:                 ":8000",
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 10 * time.Minute,
		MetricsNamespace:         "hudsynth",
		LogLevel:                 "info",
		LogFormat:                "text",
		SynthProvider:            "auto",
		MurfBaseURL:              "https://api.murf.ai",
		// Voice used by the first prototype of the HUD.
		MurfVoiceID:           "en-US-terrell",
		MurfTimeout:           30 * time.Second,
		MurfMaxRetries:        2,
		MockClipLimit:         32,
		ConsoleEntrance:       500 * time.Millisecond,
		ConsoleDwell:          3 * time.Second,
		ConsoleRequestTimeout: 60 * time.Second,
		HistoryRedactPII:      true,
		NATSSubject:           "hudsynth.synthesis",
		ServiceName:           "hudsynth",
	}

	if path := stringsTrimSpace("HUDSYNTH_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.BindAddr = envOrDefault("APP_BIND_ADDR", cfg.BindAddr)
	cfg.MetricsNamespace = envOrDefault("APP_METRICS_NAMESPACE", cfg.MetricsNamespace)
	cfg.LogLevel = strings.ToLower(envOrDefault("APP_LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envOrDefault("APP_LOG_FORMAT", cfg.LogFormat))
	cfg.SynthProvider = strings.ToLower(envOrDefault("SYNTH_PROVIDER", cfg.SynthProvider))
	cfg.MurfAPIKey = stringsTrimSpace("MURF_API_KEY")
	cfg.MurfBaseURL = envOrDefault("MURF_BASE_URL", cfg.MurfBaseURL)
	cfg.MurfVoiceID = envOrDefault("MURF_VOICE_ID", cfg.MurfVoiceID)
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.NATSURL = envOrDefault("NATS_URL", cfg.NATSURL)
	cfg.NATSSubject = envOrDefault("NATS_SUBJECT", cfg.NATSSubject)
	cfg.ServiceName = envOrDefault("OTEL_SERVICE_NAME", cfg.ServiceName)

	var err error
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"APP_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout},
		{"APP_SESSION_INACTIVITY_TIMEOUT", &cfg.SessionInactivityTimeout},
		{"MURF_TIMEOUT", &cfg.MurfTimeout},
		{"CONSOLE_ENTRANCE", &cfg.ConsoleEntrance},
		{"CONSOLE_DWELL", &cfg.ConsoleDwell},
		{"CONSOLE_REQUEST_TIMEOUT", &cfg.ConsoleRequestTimeout},
	}
	for _, d := range durations {
		*d.dst, err = durationFromEnv(d.key, *d.dst)
		if err != nil {
			return Config{}, err
		}
	}
	cfg.MurfMaxRetries, err = intFromEnv("MURF_MAX_RETRIES", cfg.MurfMaxRetries)
	if err != nil {
		return Config{}, err
	}
	cfg.MockClipLimit, err = intFromEnv("MOCK_CLIP_LIMIT", cfg.MockClipLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryRedactPII, err = boolFromEnv("HISTORY_REDACT_PII", cfg.HistoryRedactPII)
	if err != nil {
		return Config{}, err
	}
	cfg.TraceStdout, err = boolFromEnv("OTEL_TRACE_STDOUT", cfg.TraceStdout)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.SynthProvider {
	case "auto", "murf", "mock":
	default:
		return fmt.Errorf("SYNTH_PROVIDER must be auto|murf|mock, got %q", c.SynthProvider)
	}
	if c.SessionInactivityTimeout < 5*time.Second {
		return fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if c.ConsoleDwell <= 0 {
		return fmt.Errorf("CONSOLE_DWELL must be positive")
	}
	if c.ConsoleEntrance < 0 {
		return fmt.Errorf("CONSOLE_ENTRANCE must be >= 0")
	}
	// Zero disables the deadline and restores the unbounded wait.
	if c.ConsoleRequestTimeout < 0 {
		return fmt.Errorf("CONSOLE_REQUEST_TIMEOUT must be >= 0")
	}
	if c.MurfMaxRetries < 0 {
		return fmt.Errorf("MURF_MAX_RETRIES must be >= 0")
	}
	if c.MockClipLimit <= 0 {
		return fmt.Errorf("MOCK_CLIP_LIMIT must be positive")
	}
	return nil
}

// Logger builds the process logger from LogLevel and LogFormat.
func (c Config) Logger() *slog.Logger {
	level := slog.LevelInfo
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
