package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sprintlens/sprintlens/internal/infrastructure/store"
)

func TestFetchCmd_Out(t *testing.T) {
	snap := writeTestSnapshot(t, testSnapshot())
	settings := writeSettingsFile(t, "source: file\nfile:\n  path: "+snap+"\n")
	outPath := filepath.Join(t.TempDir(), "out.json")

	out, err := runCommand(t, "fetch", "--config", settings, "--out", outPath)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(out, "Snapshot written to "+outPath) {
		t.Errorf("output = %q", out)
	}

	raw, err := store.ReadSnapshotFile(outPath)
	if err != nil {
		t.Fatalf("read written snapshot: %v", err)
	}
	if raw.BoardID != "b1" || len(raw.Cards) != 10 {
		t.Errorf("snapshot = board %q with %d cards", raw.BoardID, len(raw.Cards))
	}
}

func TestFetchCmd_Workspace(t *testing.T) {
	snap := writeTestSnapshot(t, testSnapshot())
	ws := filepath.Join(t.TempDir(), "ws")
	settings := writeSettingsFile(t,
		"source: file\nfile:\n  path: "+snap+"\nworkspace: "+ws+"\n")

	out, err := runCommand(t, "fetch", "--config", settings)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	path := filepath.Join(ws, store.SnapshotsDir, "snapshot-b1.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected snapshot at %s: %v", path, err)
	}
	if !strings.Contains(out, "Snapshot written to "+path) {
		t.Errorf("output = %q", out)
	}
}

func TestFetchCmd_PersistsErrorEnvelope(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.json")
	ws := filepath.Join(t.TempDir(), "ws")
	settings := writeSettingsFile(t,
		"source: file\nfile:\n  path: "+missing+"\nworkspace: "+ws+"\n")

	if _, err := runCommand(t, "fetch", "--config", settings); err != nil {
		t.Fatalf("fetch should persist the failure envelope, got %v", err)
	}

	raw, err := store.ReadSnapshotFile(filepath.Join(ws, store.SnapshotsDir, "snapshot-board.json"))
	if err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	if raw.Error == "" {
		t.Error("expected error field in persisted envelope")
	}
}
