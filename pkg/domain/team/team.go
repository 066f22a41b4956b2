// Package team analyzes per-member workload and completion over a board
// snapshot and flags members carrying a disproportionate share of cards.
package team

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

// DefaultHighWorkloadRatio is the multiple of the average assignment count
// above which a member counts as overloaded.
const DefaultHighWorkloadRatio = 1.5

// Config carries the injected analyzer thresholds.
type Config struct {
	HighWorkloadRatio float64 `json:"high_workload_ratio" yaml:"high_workload_ratio"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{HighWorkloadRatio: DefaultHighWorkloadRatio}
}

// AssignedCard is one card in a member's assignment list.
type AssignedCard struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Due      string `json:"due" yaml:"due"`
	ListName string `json:"listName" yaml:"listName"`
}

// MemberStats accumulates one member's assignment counters.
type MemberStats struct {
	Total          int            `json:"total" yaml:"total"`
	Completed      int            `json:"completed" yaml:"completed"`
	Overdue        int            `json:"overdue" yaml:"overdue"`
	Cards          []AssignedCard `json:"cards" yaml:"cards"`
	CompletionRate float64        `json:"completion_rate" yaml:"completion_rate"`
}

// HighWorkload reports a member whose assignment count exceeds the
// high-workload threshold.
type HighWorkload struct {
	Name       string  `json:"name" yaml:"name"`
	CardsCount int     `json:"cards_count" yaml:"cards_count"`
	AvgRatio   float64 `json:"avg_ratio" yaml:"avg_ratio"`
}

// Performance is the team analysis result. Err is set only by the catch-all
// boundary; when set, every other field holds its zero default.
type Performance struct {
	CardsByMember           map[string]*MemberStats `json:"cards_by_member" yaml:"cards_by_member"`
	AvgCardsPerMember       float64                 `json:"avg_cards_per_member" yaml:"avg_cards_per_member"`
	MembersWithHighWorkload []HighWorkload          `json:"members_with_high_workload" yaml:"members_with_high_workload"`
	MemberCount             int                     `json:"member_count" yaml:"member_count"`
	Err                     string                  `json:"error,omitempty" yaml:"error,omitempty"`
}

// HasImbalance reports whether any member is overloaded.
func (p Performance) HasImbalance() bool {
	return len(p.MembersWithHighWorkload) > 0
}

// Analyzer computes Performance from cards and the board member roster.
type Analyzer struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalyzer creates an Analyzer. A nil logger falls back to slog.Default.
func NewAnalyzer(cfg Config, logger *slog.Logger) *Analyzer {
	if cfg.HighWorkloadRatio <= 0 {
		cfg.HighWorkloadRatio = DefaultHighWorkloadRatio
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, logger: logger, now: time.Now}
}

// Analyze accumulates per-member stats over every member referenced by at
// least one card. Member ids that resolve to nobody bucket under "Unknown".
// Any unexpected failure is converted into a result carrying Err with all
// fields zeroed, never a partial result.
func (a *Analyzer) Analyze(cards []board.Card, members []board.Member) (p Performance) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("error analyzing team performance", "error", r)
			p = Performance{
				CardsByMember:           map[string]*MemberStats{},
				MembersWithHighWorkload: []HighWorkload{},
				Err:                     fmt.Sprint(r),
			}
		}
	}()

	nameByID := make(map[string]string, len(members))
	for _, m := range members {
		name := m.DisplayName()
		if name == "" {
			name = "Unknown"
		}
		nameByID[m.ID] = name
	}

	now := a.now()
	byMember := make(map[string]*MemberStats)
	var order []string // first-reference order, keeps output deterministic

	for _, card := range cards {
		for _, id := range card.MemberIDs {
			name, ok := nameByID[id]
			if !ok {
				name = "Unknown"
			}
			stats, ok := byMember[name]
			if !ok {
				stats = &MemberStats{Cards: []AssignedCard{}}
				byMember[name] = stats
				order = append(order, name)
			}

			stats.Total++
			stats.Cards = append(stats.Cards, AssignedCard{
				ID:       card.ID,
				Name:     card.Name,
				Due:      card.Due,
				ListName: card.ListName,
			})

			if board.IsDoneList(card.ListName) {
				stats.Completed++
			}
			if card.HasDue() && !card.DueComplete {
				if due, err := card.DueTime(); err == nil && due.Before(now) {
					stats.Overdue++
				}
			}
		}
	}

	totalAssignments := 0
	for _, stats := range byMember {
		stats.CompletionRate = 0
		if stats.Total > 0 {
			stats.CompletionRate = float64(stats.Completed) / float64(stats.Total) * 100
		}
		totalAssignments += stats.Total
	}

	avg := 0.0
	if len(byMember) > 0 {
		avg = float64(totalAssignments) / float64(len(byMember))
	}
	threshold := avg * a.cfg.HighWorkloadRatio

	overloaded := []HighWorkload{}
	for _, name := range order {
		stats := byMember[name]
		if float64(stats.Total) > threshold {
			ratio := 0.0
			if avg > 0 {
				ratio = float64(stats.Total) / avg
			}
			overloaded = append(overloaded, HighWorkload{
				Name:       name,
				CardsCount: stats.Total,
				AvgRatio:   ratio,
			})
		}
	}

	return Performance{
		CardsByMember:           byMember,
		AvgCardsPerMember:       avg,
		MembersWithHighWorkload: overloaded,
		MemberCount:             len(byMember),
	}
}
