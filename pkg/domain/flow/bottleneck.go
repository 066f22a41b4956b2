// Package flow detects process bottlenecks: lists holding a disproportionate
// share of cards relative to the board average.
package flow

import (
	"fmt"
	"log/slog"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

// DefaultBottleneckRatio is the multiple of the average list count above
// which a list counts as a bottleneck.
const DefaultBottleneckRatio = 1.5

// Config carries the injected detector thresholds.
type Config struct {
	BottleneckRatio float64 `json:"bottleneck_ratio" yaml:"bottleneck_ratio"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{BottleneckRatio: DefaultBottleneckRatio}
}

// Bottleneck is one congested list.
type Bottleneck struct {
	ListName   string  `json:"list_name" yaml:"list_name"`
	CardCount  int     `json:"card_count" yaml:"card_count"`
	RatioToAvg float64 `json:"ratio_to_avg" yaml:"ratio_to_avg"`
}

// Report is the bottleneck detection result. Err is set only by the
// catch-all boundary; when set, every other field holds its zero default.
type Report struct {
	CardsByList     map[string]int `json:"cards_by_list" yaml:"cards_by_list"`
	AvgCardsPerList float64        `json:"avg_cards_per_list" yaml:"avg_cards_per_list"`
	Bottlenecks     []Bottleneck   `json:"bottlenecks" yaml:"bottlenecks"`
	Err             string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// HasSevere reports whether any bottleneck exceeds the given ratio.
func (r Report) HasSevere(ratio float64) bool {
	for _, b := range r.Bottlenecks {
		if b.RatioToAvg > ratio {
			return true
		}
	}
	return false
}

// Detector flags lists whose card count exceeds the configured multiple of
// the board average.
type Detector struct {
	cfg    Config
	logger *slog.Logger
}

// NewDetector creates a Detector. A nil logger falls back to slog.Default.
func NewDetector(cfg Config, logger *slog.Logger) *Detector {
	if cfg.BottleneckRatio <= 0 {
		cfg.BottleneckRatio = DefaultBottleneckRatio
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{cfg: cfg, logger: logger}
}

// Detect counts cards per list and flags outliers. The scan keeps the
// zero-initialization (input list) order; the comparison uses the raw
// average, no weighting or trimming. Any unexpected failure is converted
// into a result carrying Err with all fields zeroed, never a partial result.
func (d *Detector) Detect(cards []board.Card, lists []board.List) (rep Report) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("error identifying process bottlenecks", "error", r)
			rep = Report{
				CardsByList: map[string]int{},
				Bottlenecks: []Bottleneck{},
				Err:         fmt.Sprint(r),
			}
		}
	}()

	listName := make(map[string]string, len(lists))
	order := make([]string, 0, len(lists))
	counts := make(map[string]int, len(lists))
	for _, l := range lists {
		listName[l.ID] = l.Name
		if _, ok := counts[l.Name]; !ok {
			order = append(order, l.Name)
		}
		counts[l.Name] = 0
	}

	for _, card := range cards {
		if name, ok := listName[card.ListID]; card.ListID != "" && ok {
			counts[name]++
		}
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	avg := 0.0
	if len(counts) > 0 {
		avg = float64(total) / float64(len(counts))
	}

	bottlenecks := []Bottleneck{}
	for _, name := range order {
		count := counts[name]
		if float64(count) > avg*d.cfg.BottleneckRatio {
			ratio := 0.0
			if avg > 0 {
				ratio = float64(count) / avg
			}
			bottlenecks = append(bottlenecks, Bottleneck{
				ListName:   name,
				CardCount:  count,
				RatioToAvg: ratio,
			})
		}
	}

	return Report{
		CardsByList:     counts,
		AvgCardsPerList: avg,
		Bottlenecks:     bottlenecks,
	}
}
