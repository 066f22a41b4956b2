// Package store persists board snapshots and rendered reports under the
// workspace directory as plain files.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

const (
	SnapshotsDir = "snapshots"
	ReportsDir   = "reports"
)

// Store is the filesystem-backed workspace.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, typically ".sprintlens".
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the workspace directory.
func (s *Store) Dir() string {
	return s.dir
}

// Initialize creates the workspace directory layout.
func (s *Store) Initialize() error {
	for _, sub := range []string{SnapshotsDir, ReportsDir} {
		if err := os.MkdirAll(filepath.Join(s.dir, sub), 0750); err != nil {
			return fmt.Errorf("failed to create workspace directory: %w", err)
		}
	}
	return nil
}

// IsInitialized reports whether the workspace directory exists.
func (s *Store) IsInitialized() bool {
	_, err := os.Stat(s.dir)
	return err == nil
}

// resolvePath confines name to the given workspace subdirectory and rejects
// traversal outside it.
func (s *Store) resolvePath(sub, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(s.dir, sub)
	cleanPath := filepath.Clean(filepath.Join(baseDir, name))
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", name)
	}

	return cleanPath, nil
}

// SnapshotPath resolves a snapshot file name inside the workspace.
func (s *Store) SnapshotPath(name string) (string, error) {
	return s.resolvePath(SnapshotsDir, name)
}

// ReportPath resolves a report file name inside the workspace.
func (s *Store) ReportPath(name string) (string, error) {
	return s.resolvePath(ReportsDir, name)
}

// SnapshotName returns the canonical snapshot file name for a board.
func SnapshotName(boardID string) string {
	if boardID == "" {
		boardID = "board"
	}
	return fmt.Sprintf("snapshot-%s.json", boardID)
}

// ReportName returns the canonical report file name for a board.
func ReportName(boardID string) string {
	if boardID == "" {
		boardID = "board"
	}
	return fmt.Sprintf("report-%s.md", boardID)
}

// SaveSnapshot writes a raw snapshot as indented JSON and returns the path.
func (s *Store) SaveSnapshot(name string, raw *board.RawSnapshot) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("snapshot is nil")
	}

	path, err := s.SnapshotPath(name)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot by name from the workspace.
func (s *Store) LoadSnapshot(name string) (*board.RawSnapshot, error) {
	path, err := s.SnapshotPath(name)
	if err != nil {
		return nil, err
	}
	return ReadSnapshotFile(path)
}

// SaveReport writes rendered report markdown and returns the path.
func (s *Store) SaveReport(name, content string) (string, error) {
	path, err := s.ReportPath(name)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// WriteSnapshotFile writes a raw snapshot as indented JSON to an
// arbitrary path.
func WriteSnapshotFile(path string, raw *board.RawSnapshot) error {
	if raw == nil {
		return fmt.Errorf("snapshot is nil")
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshotFile reads a raw snapshot from an arbitrary path, validating
// the document against the snapshot schema before decoding.
func ReadSnapshotFile(path string) (*board.RawSnapshot, error) {
	// #nosec G304 -- callers pass either a resolved workspace path or an
	// explicit user-supplied snapshot file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	if err := board.ValidateRaw(data); err != nil {
		return nil, err
	}

	var raw board.RawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &raw, nil
}
