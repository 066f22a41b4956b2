// Package source defines the upstream trackers board snapshots are fetched from.
package source

import (
	"context"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

// Source fetches the current state of a project board from an upstream
// tracker. Implementations return an error on transport or credential
// failures; converting failures into error-envelope snapshots is the
// caller's decision.
type Source interface {
	// Name identifies the source in logs and snapshot filenames.
	Name() string

	// Fetch retrieves the current board state.
	Fetch(ctx context.Context) (*board.RawSnapshot, error)
}
