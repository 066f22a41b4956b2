package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "info"})

	logger.Info("snapshot loaded", "cards", 12)
	out := buf.String()

	if !strings.Contains(out, "snapshot loaded") {
		t.Errorf("output missing message: %s", out)
	}
	if !strings.Contains(out, "run_id=") {
		t.Errorf("output missing run id: %s", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "info", Format: "json"})

	logger.Info("snapshot loaded")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if entry["msg"] != "snapshot loaded" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["run_id"] == "" || entry["run_id"] == nil {
		t.Error("run_id missing")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "warn"})

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line logged at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn line missing")
	}
}

func TestVerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "error", Verbose: true})

	logger.Debug("details")
	if !strings.Contains(buf.String(), "details") {
		t.Error("debug line missing with Verbose set")
	}
}
