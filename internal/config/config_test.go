package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8000" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8000")
	}
	if cfg.SynthProvider != "auto" {
		t.Fatalf("SynthProvider = %q, want %q", cfg.SynthProvider, "auto")
	}
	if cfg.MurfVoiceID != "en-US-terrell" {
		t.Fatalf("MurfVoiceID = %q, want default voice", cfg.MurfVoiceID)
	}
	if cfg.ConsoleEntrance != 500*time.Millisecond || cfg.ConsoleDwell != 3*time.Second {
		t.Fatalf("console timings = %v/%v, want 500ms/3s", cfg.ConsoleEntrance, cfg.ConsoleDwell)
	}
	if !cfg.HistoryRedactPII {
		t.Fatalf("HistoryRedactPII = false, want true by default")
	}
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	setCoreEnvEmpty(t)
	path := filepath.Join(t.TempDir(), "hudsynth.yaml")
	content := "bind_addr: \":9100\"\nsynth_provider: mock\nconsole_dwell: 5s\nnats_subject: hud.test\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("HUDSYNTH_CONFIG", path)
	t.Setenv("APP_BIND_ADDR", ":9200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9200" {
		t.Fatalf("BindAddr = %q, want env override %q", cfg.BindAddr, ":9200")
	}
	if cfg.SynthProvider != "mock" {
		t.Fatalf("SynthProvider = %q, want %q from file", cfg.SynthProvider, "mock")
	}
	if cfg.ConsoleDwell != 5*time.Second {
		t.Fatalf("ConsoleDwell = %v, want 5s from file", cfg.ConsoleDwell)
	}
	if cfg.NATSSubject != "hud.test" {
		t.Fatalf("NATSSubject = %q, want %q", cfg.NATSSubject, "hud.test")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"SYNTH_PROVIDER":          "elevenlabs",
		"CONSOLE_DWELL":           "0s",
		"CONSOLE_REQUEST_TIMEOUT": "soon",
		"MURF_MAX_RETRIES":        "-1",
		"APP_ALLOW_ANY_ORIGIN":    "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("Load() with %s=%q expected error", key, value)
			}
		})
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"HUDSYNTH_CONFIG",
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_LOG_LEVEL",
		"APP_LOG_FORMAT",
		"SYNTH_PROVIDER",
		"MURF_API_KEY",
		"MURF_BASE_URL",
		"MURF_VOICE_ID",
		"MURF_TIMEOUT",
		"MURF_MAX_RETRIES",
		"MOCK_CLIP_LIMIT",
		"CONSOLE_ENTRANCE",
		"CONSOLE_DWELL",
		"CONSOLE_REQUEST_TIMEOUT",
		"DATABASE_URL",
		"HISTORY_REDACT_PII",
		"NATS_URL",
		"NATS_SUBJECT",
		"OTEL_TRACE_STDOUT",
		"OTEL_SERVICE_NAME",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
