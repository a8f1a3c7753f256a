package bootstrap

import (
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/rfp-slide-generator/internal/config"
)

func memoryConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		StoreBackend:             "memory",
		ObjectStorage:            "localfs",
		StoragePath:              t.TempDir(),
		StagingDir:               t.TempDir(),
		LLMProvider:              "ollama",
		OllamaURL:                "http://127.0.0.1:1",
		OllamaGenModel:           "test-model",
		GenerationTimeoutSeconds: 1,
		DefaultSlideCount:        5,
		HistoryLimit:             10,
	}
}

func TestNewWiresMemoryBackend(t *testing.T) {
	app, err := New(context.Background(), memoryConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	if app.Uploader == nil || app.Generator == nil || app.Catalog == nil || app.Decks == nil {
		t.Fatalf("expected all use cases wired: %+v", app)
	}
	if app.Events != nil {
		t.Fatalf("events must be nil when disabled")
	}

	listing, err := app.Catalog.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(listing.RFPDocuments) != 0 || len(listing.BrandGuides) != 0 {
		t.Fatalf("expected empty listing, got %+v", listing)
	}
}

func TestNewRejectsUnknownBackends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"store", func(c *config.Config) { c.StoreBackend = "sqlite" }, "STORE_BACKEND"},
		{"object storage", func(c *config.Config) { c.ObjectStorage = "s4" }, "OBJECT_STORAGE"},
		{"llm provider", func(c *config.Config) { c.LLMProvider = "bard" }, "LLM_PROVIDER"},
		{"openai without key", func(c *config.Config) { c.LLMProvider = "openai" }, "OPENAI_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig(t)
			tt.mutate(&cfg)

			app, err := New(context.Background(), cfg)
			if err == nil {
				app.Close()
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
