package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sprintlens/sprintlens/internal/infrastructure/source"
	"github.com/sprintlens/sprintlens/internal/infrastructure/store"
	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

// CollectService fetches board snapshots from a configured source and
// persists them in the workspace.
type CollectService struct {
	src    source.Source
	store  *store.Store
	logger *slog.Logger
}

func NewCollectService(src source.Source, st *store.Store, logger *slog.Logger) *CollectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollectService{src: src, store: st, logger: logger}
}

// Collect fetches the current board state. A fetch failure comes back
// as an error-envelope snapshot rather than an error, so the analysis
// pipeline can propagate the message through its usual contract.
func (s *CollectService) Collect(ctx context.Context) *board.RawSnapshot {
	snap, err := s.src.Fetch(ctx)
	if err != nil {
		s.logger.Error("failed to fetch board data",
			"source", s.src.Name(), "error", err)
		return &board.RawSnapshot{Error: err.Error()}
	}

	s.logger.Info("collected board snapshot",
		"source", s.src.Name(), "board_id", snap.BoardID, "cards", len(snap.Cards))
	return snap
}

// CollectAndSave fetches the board and writes the snapshot into the
// workspace, returning the written path alongside the snapshot.
func (s *CollectService) CollectAndSave(ctx context.Context) (string, *board.RawSnapshot, error) {
	snap := s.Collect(ctx)

	path, err := s.store.SaveSnapshot(store.SnapshotName(snap.BoardID), snap)
	if err != nil {
		return "", nil, fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Info("saved board snapshot", "path", path)
	return path, snap, nil
}

// LoadSnapshot reads a stored snapshot by name.
func (s *CollectService) LoadSnapshot(name string) (*board.RawSnapshot, error) {
	return s.store.LoadSnapshot(name)
}
