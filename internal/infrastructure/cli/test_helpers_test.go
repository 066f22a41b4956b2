package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sprintlens/sprintlens/internal/infrastructure/store"
	"github.com/sprintlens/sprintlens/internal/infrastructure/watch"
	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	return buf.String()
}

// resetFlags restores every flag variable to its default so values from a
// previous Execute do not leak between tests.
func resetFlags() {
	configPath = ""
	verbose = false
	logFormat = ""
	fetchOut = ""
	analyzeFetch = false
	analyzeOutput = outputText
	gapsOutput = outputText
	reportOut = ""
	reportSprint = ""
	reportTeam = ""
	reportTemplate = ""
	reportPreview = false
	watchDebounce = watch.DefaultDebounce
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags()
	RootCmd.SetArgs(args)

	var err error
	out := captureStdout(t, func() {
		err = RootCmd.Execute()
	})
	return out, err
}

// testSnapshot is a 10-card board at 30% completion: seven open cards in
// To Do, three in Done.
func testSnapshot() *board.RawSnapshot {
	cards := make([]board.RawCard, 0, 10)
	for i := 0; i < 7; i++ {
		cards = append(cards, board.RawCard{
			ID:     string(rune('a' + i)),
			Name:   "Open card",
			ListID: "l1",
		})
	}
	for i := 0; i < 3; i++ {
		cards = append(cards, board.RawCard{
			ID:     string(rune('h' + i)),
			Name:   "Done card",
			ListID: "l2",
		})
	}
	return &board.RawSnapshot{
		BoardID: "b1",
		Cards:   cards,
		Lists: []board.RawList{
			{ID: "l1", Name: "To Do", Pos: 1},
			{ID: "l2", Name: "Done", Pos: 2},
		},
		Members: []board.RawMember{{ID: "m1", FullName: "Ada Lovelace"}},
	}
}

func writeTestSnapshot(t *testing.T, raw *board.RawSnapshot) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := store.WriteSnapshotFile(path, raw); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func writeSettingsFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}
