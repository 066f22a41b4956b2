package analytics

import (
	"fmt"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

// CurrentSprint holds the velocity figures for the sprint under analysis.
type CurrentSprint struct {
	TotalPoints          int     `json:"total_points" yaml:"total_points"`
	CompletedPoints      int     `json:"completed_points" yaml:"completed_points"`
	CompletionPercentage float64 `json:"completion_percentage" yaml:"completion_percentage"`
}

// HistoricalSprint is one synthetic prior-sprint entry. The points are
// derived from the current sprint by a fixed offset, not real history, and
// may go negative.
type HistoricalSprint struct {
	Sprint          string `json:"sprint" yaml:"sprint"`
	CompletedPoints int    `json:"completed_points" yaml:"completed_points"`
}

// Velocity is the velocity result for the current sprint plus the synthetic
// historical entries.
type Velocity struct {
	CurrentSprint CurrentSprint      `json:"current_sprint" yaml:"current_sprint"`
	Historical    []HistoricalSprint `json:"historical" yaml:"historical"`
}

// Velocity computes the current sprint figures and derives one historical
// entry per configured offset, labeled Sprint -1, Sprint -2, and so on.
func (e *Estimator) Velocity(cards []board.Card) Velocity {
	total := len(cards)
	completed := completedCount(cards)

	percentage := 0.0
	if total > 0 {
		percentage = float64(completed) / float64(total) * 100
	}

	historical := make([]HistoricalSprint, 0, len(e.cfg.HistoricalOffsets))
	for i, offset := range e.cfg.HistoricalOffsets {
		historical = append(historical, HistoricalSprint{
			Sprint:          fmt.Sprintf("Sprint -%d", i+1),
			CompletedPoints: completed - offset,
		})
	}

	return Velocity{
		CurrentSprint: CurrentSprint{
			TotalPoints:          total,
			CompletedPoints:      completed,
			CompletionPercentage: percentage,
		},
		Historical: historical,
	}
}
