package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewTagsServiceAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "api", "warn")

	logger.Info("slides_generated", "slide_count", 5)
	if buf.Len() != 0 {
		t.Fatalf("info must be filtered at warn level, got %s", buf.String())
	}

	logger.Warn("generation_record_failed", "generation_id", "gen-1")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["service"] != "api" || entry["app"] != appName || entry["msg"] != "generation_record_failed" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if _, ok := entry["source"]; ok {
		t.Fatalf("source must only be added at debug level")
	}
}

func TestDebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "worker", " DEBUG ").Debug("deck_archived")
	if !strings.Contains(buf.String(), `"source"`) {
		t.Fatalf("expected source in debug output, got %s", buf.String())
	}
}
