// Package metrics computes sprint health metrics over a normalized board
// snapshot: completion rate, per-list counts, blockers, and deadline buckets.
package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

// DefaultApproachingWindowDays is how far ahead a due date counts as
// approaching.
const DefaultApproachingWindowDays = 3

// Config carries the injected calculator thresholds.
type Config struct {
	ApproachingWindowDays int `json:"approaching_window_days" yaml:"approaching_window_days"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{ApproachingWindowDays: DefaultApproachingWindowDays}
}

// BlockerEntry is one blocked card in the metrics result.
type BlockerEntry struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	List string `json:"list" yaml:"list"`
}

// DeadlineEntry is one card in the approaching or overdue buckets.
type DeadlineEntry struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Due  string `json:"due" yaml:"due"`
	List string `json:"list" yaml:"list"`
}

// SprintMetrics is the metrics result object. Err is set only by the
// catch-all boundary; when set, every other field holds its zero default.
type SprintMetrics struct {
	TotalCards                int             `json:"total_cards" yaml:"total_cards"`
	CardsByList               map[string]int  `json:"cards_by_list" yaml:"cards_by_list"`
	CompletionRate            float64         `json:"completion_rate" yaml:"completion_rate"`
	Blockers                  []BlockerEntry  `json:"blockers" yaml:"blockers"`
	ApproachingDeadlines      []DeadlineEntry `json:"approaching_deadlines" yaml:"approaching_deadlines"`
	OverdueCards              []DeadlineEntry `json:"overdue_cards" yaml:"overdue_cards"`
	BlockersCount             int             `json:"blockers_count" yaml:"blockers_count"`
	ApproachingDeadlinesCount int             `json:"approaching_deadlines_count" yaml:"approaching_deadlines_count"`
	OverdueCount              int             `json:"overdue_count" yaml:"overdue_count"`
	Err                       string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// HasBlockers reports whether any blocker was found.
func (m SprintMetrics) HasBlockers() bool {
	return len(m.Blockers) > 0
}

// Calculator computes SprintMetrics from cards and lists.
type Calculator struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewCalculator creates a Calculator. A nil logger falls back to slog.Default.
func NewCalculator(cfg Config, logger *slog.Logger) *Calculator {
	if cfg.ApproachingWindowDays <= 0 {
		cfg.ApproachingWindowDays = DefaultApproachingWindowDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{cfg: cfg, logger: logger, now: time.Now}
}

// Compute derives the sprint metrics. Any unexpected failure is converted
// into a result carrying Err with all counts zeroed, never a partial result.
func (c *Calculator) Compute(cards []board.Card, lists []board.List) (m SprintMetrics) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("error calculating sprint metrics", "error", r)
			m = SprintMetrics{
				CardsByList:          map[string]int{},
				Blockers:             []BlockerEntry{},
				ApproachingDeadlines: []DeadlineEntry{},
				OverdueCards:         []DeadlineEntry{},
				Err:                  fmt.Sprint(r),
			}
		}
	}()

	listName := make(map[string]string, len(lists))
	for _, l := range lists {
		listName[l.ID] = l.Name
	}

	cardsByList := make(map[string]int, len(lists))
	for _, l := range lists {
		cardsByList[l.Name] = 0
	}
	for _, card := range cards {
		if name, ok := listName[card.ListID]; card.ListID != "" && ok {
			cardsByList[name]++
		}
	}

	totalCards := len(cards)
	completed := cardsByList[board.DoneListName]
	completionRate := 0.0
	if totalCards > 0 {
		completionRate = float64(completed) / float64(totalCards) * 100
	}

	blockers := []BlockerEntry{}
	for _, card := range cards {
		isBlocker, _ := board.DetectBlocker(card.Labels, card.Comments)
		if !isBlocker {
			continue
		}
		blockers = append(blockers, BlockerEntry{
			ID:   card.ID,
			Name: card.Name,
			URL:  card.URL,
			List: resolveList(listName, card.ListID),
		})
	}

	now := c.now()
	windowEnd := now.Add(time.Duration(c.cfg.ApproachingWindowDays) * 24 * time.Hour)

	approaching := []DeadlineEntry{}
	for _, card := range cards {
		if !card.HasDue() {
			continue
		}
		due, err := card.DueTime()
		if err != nil {
			c.logger.Warn("error parsing due date", "card", card.Name, "error", err)
			continue
		}
		if now.Before(due) && !due.After(windowEnd) && !card.DueComplete {
			approaching = append(approaching, DeadlineEntry{
				ID:   card.ID,
				Name: card.Name,
				Due:  card.Due,
				List: resolveList(listName, card.ListID),
			})
		}
	}

	overdue := []DeadlineEntry{}
	for _, card := range cards {
		if !card.HasDue() {
			continue
		}
		due, err := card.DueTime()
		if err != nil {
			c.logger.Warn("error parsing due date", "card", card.Name, "error", err)
			continue
		}
		if due.Before(now) && !card.DueComplete {
			overdue = append(overdue, DeadlineEntry{
				ID:   card.ID,
				Name: card.Name,
				Due:  card.Due,
				List: resolveList(listName, card.ListID),
			})
		}
	}

	return SprintMetrics{
		TotalCards:                totalCards,
		CardsByList:               cardsByList,
		CompletionRate:            completionRate,
		Blockers:                  blockers,
		ApproachingDeadlines:      approaching,
		OverdueCards:              overdue,
		BlockersCount:             len(blockers),
		ApproachingDeadlinesCount: len(approaching),
		OverdueCount:              len(overdue),
	}
}

// resolveList maps a list id to its name, "Unknown" when unresolvable.
func resolveList(listName map[string]string, id string) string {
	if name, ok := listName[id]; ok {
		return name
	}
	return "Unknown"
}
