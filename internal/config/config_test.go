package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"CONFIG_FILE", "STORE_BACKEND", "LLM_PROVIDER", "DEFAULT_SLIDE_COUNT", "HISTORY_LIMIT", "NATS_SUBJECT", "EVENTS_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.StoreBackend != "postgres" {
		t.Fatalf("expected postgres store by default, got %q", cfg.StoreBackend)
	}
	if cfg.LLMProvider != "ollama" {
		t.Fatalf("expected ollama provider by default, got %q", cfg.LLMProvider)
	}
	if cfg.DefaultSlideCount != 5 {
		t.Fatalf("expected default slide count 5, got %d", cfg.DefaultSlideCount)
	}
	if cfg.HistoryLimit != 50 {
		t.Fatalf("expected history limit 50, got %d", cfg.HistoryLimit)
	}
	if cfg.NATSSubject != "slides.generated" {
		t.Fatalf("unexpected subject %q", cfg.NATSSubject)
	}
	if cfg.EventsEnabled {
		t.Fatalf("events should be disabled by default")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_BACKEND", "Mongo")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "30")
	t.Setenv("DEFAULT_SLIDE_COUNT", "not-a-number")

	cfg := Load()
	if cfg.StoreBackend != "mongo" {
		t.Fatalf("expected lowercased backend, got %q", cfg.StoreBackend)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if !cfg.MinioUseSSL {
		t.Fatalf("expected ssl enabled")
	}
	if cfg.GenerationTimeout().Seconds() != 30 {
		t.Fatalf("expected 30s timeout, got %v", cfg.GenerationTimeout())
	}
	if cfg.DefaultSlideCount != 5 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.DefaultSlideCount)
	}
}

func TestLoadUsesYAMLOverlayBelowEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "OLLAMA_GEN_MODEL: qwen2.5:7b\nHISTORY_LIMIT: 20\nMCP_ENABLED: false\napi_port: \"9999\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OLLAMA_GEN_MODEL", "")
	t.Setenv("HISTORY_LIMIT", "")
	t.Setenv("MCP_ENABLED", "")
	t.Setenv("API_PORT", "7000")

	cfg := Load()
	if cfg.OllamaGenModel != "qwen2.5:7b" {
		t.Fatalf("expected overlay model, got %q", cfg.OllamaGenModel)
	}
	if cfg.HistoryLimit != 20 {
		t.Fatalf("expected overlay history limit, got %d", cfg.HistoryLimit)
	}
	if cfg.MCPEnabled {
		t.Fatalf("expected overlay to disable mcp")
	}
	if cfg.APIPort != "7000" {
		t.Fatalf("environment must win over overlay, got %q", cfg.APIPort)
	}
}

func TestLoadOverlayRejectsNestedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database:\n  dsn: x\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := LoadOverlay(path); err == nil {
		t.Fatalf("expected error for nested overlay")
	}
}
