package source

import (
	"context"

	"github.com/sprintlens/sprintlens/internal/infrastructure/store"
	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

// FileSource replays a snapshot stored on disk. It lets the full
// pipeline run offline against previously fetched board data.
type FileSource struct {
	Path string
}

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

// Fetch reads and validates the snapshot file.
func (s *FileSource) Fetch(_ context.Context) (*board.RawSnapshot, error) {
	return store.ReadSnapshotFile(s.Path)
}
