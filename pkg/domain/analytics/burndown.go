// Package analytics provides burn-down and velocity estimates for sprint
// reporting. The estimates are deliberately simple: one card counts as one
// point, the sprint is assumed to span a fixed number of days, and the
// actual burn-down is anchored at a fixed mid-sprint checkpoint rather than
// real elapsed time.
package analytics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

const (
	// DefaultSprintDays is the assumed sprint length for the ideal line.
	DefaultSprintDays = 10
	// DefaultCheckpointDay is the assumed current day for the actual line.
	DefaultCheckpointDay = 5
)

// Config carries the injected estimator parameters.
type Config struct {
	SprintDays        int   `json:"sprint_days" yaml:"sprint_days"`
	CheckpointDay     int   `json:"checkpoint_day" yaml:"checkpoint_day"`
	HistoricalOffsets []int `json:"historical_offsets" yaml:"historical_offsets"`
}

// DefaultConfig returns the stock estimator parameters.
func DefaultConfig() Config {
	return Config{
		SprintDays:        DefaultSprintDays,
		CheckpointDay:     DefaultCheckpointDay,
		HistoricalOffsets: []int{2, 5, 3},
	}
}

// IdealPoint is one point on the ideal burn-down line.
type IdealPoint struct {
	Day   int     `json:"day" yaml:"day"`
	Ideal float64 `json:"ideal" yaml:"ideal"`
}

// ActualPoint is one point on the estimated actual burn-down line.
type ActualPoint struct {
	Day    int     `json:"day" yaml:"day"`
	Actual float64 `json:"actual" yaml:"actual"`
}

// Burndown is the burn-down chart data for the current sprint.
type Burndown struct {
	TotalPoints         int           `json:"total_points" yaml:"total_points"`
	CompletedPoints     int           `json:"completed_points" yaml:"completed_points"`
	RemainingPoints     int           `json:"remaining_points" yaml:"remaining_points"`
	IdealBurnDown       []IdealPoint  `json:"ideal_burn_down" yaml:"ideal_burn_down"`
	ActualBurnDown      []ActualPoint `json:"actual_burn_down" yaml:"actual_burn_down"`
	ProjectedCompletion Projection    `json:"projected_completion" yaml:"projected_completion"`
}

const cannotEstimate = "Cannot estimate"

// Projection is a projected days-to-completion estimate. It marshals as a
// JSON number, or as the string "Cannot estimate" when nothing has completed
// yet and no rate can be derived.
type Projection struct {
	days float64
	ok   bool
}

// ProjectionOf returns a numeric projection.
func ProjectionOf(days float64) Projection {
	return Projection{days: days, ok: true}
}

// NoProjection returns the unestimable projection.
func NoProjection() Projection {
	return Projection{}
}

// Days returns the projected day count and whether an estimate exists.
func (p Projection) Days() (float64, bool) {
	return p.days, p.ok
}

func (p Projection) String() string {
	if !p.ok {
		return cannotEstimate
	}
	return strconv.FormatFloat(p.days, 'f', -1, 64)
}

func (p Projection) MarshalJSON() ([]byte, error) {
	if !p.ok {
		return json.Marshal(cannotEstimate)
	}
	return json.Marshal(p.days)
}

func (p *Projection) UnmarshalJSON(data []byte) error {
	var days float64
	if err := json.Unmarshal(data, &days); err == nil {
		*p = Projection{days: days, ok: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("projection must be a number or a string: %w", err)
	}
	*p = Projection{}
	return nil
}

// Estimator derives burn-down and velocity figures from a card snapshot.
type Estimator struct {
	cfg    Config
	logger *slog.Logger
}

// NewEstimator creates an Estimator. Zero-valued config fields fall back to
// the defaults; a nil logger falls back to slog.Default.
func NewEstimator(cfg Config, logger *slog.Logger) *Estimator {
	if cfg.SprintDays <= 0 {
		cfg.SprintDays = DefaultSprintDays
	}
	if cfg.CheckpointDay <= 0 {
		cfg.CheckpointDay = DefaultCheckpointDay
	}
	if len(cfg.HistoricalOffsets) == 0 {
		cfg.HistoricalOffsets = DefaultConfig().HistoricalOffsets
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Estimator{cfg: cfg, logger: logger}
}

// Burndown computes the chart data. The ideal line runs from day 0 through
// the full sprint length; the actual line runs from day 0 through the
// checkpoint day, spreading the completed count evenly across it.
func (e *Estimator) Burndown(cards []board.Card) Burndown {
	total := len(cards)
	completed := completedCount(cards)
	remaining := total - completed

	ideal := make([]IdealPoint, 0, e.cfg.SprintDays+1)
	for day := 0; day <= e.cfg.SprintDays; day++ {
		ideal = append(ideal, IdealPoint{
			Day:   day,
			Ideal: float64(total) - float64(total*day)/float64(e.cfg.SprintDays),
		})
	}

	actual := make([]ActualPoint, 0, e.cfg.CheckpointDay+1)
	for day := 0; day <= e.cfg.CheckpointDay; day++ {
		actual = append(actual, ActualPoint{
			Day:    day,
			Actual: float64(total) - float64(completed*day)/float64(e.cfg.CheckpointDay),
		})
	}

	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total)
	}
	projection := NoProjection()
	if rate > 0 {
		projection = ProjectionOf(float64(remaining) / rate)
	}

	return Burndown{
		TotalPoints:         total,
		CompletedPoints:     completed,
		RemainingPoints:     remaining,
		IdealBurnDown:       ideal,
		ActualBurnDown:      actual,
		ProjectedCompletion: projection,
	}
}

func completedCount(cards []board.Card) int {
	n := 0
	for _, card := range cards {
		if card.IsComplete {
			n++
		}
	}
	return n
}
