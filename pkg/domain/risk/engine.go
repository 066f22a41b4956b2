package risk

import (
	"fmt"
	"log/slog"

	"github.com/sprintlens/sprintlens/pkg/domain/flow"
	"github.com/sprintlens/sprintlens/pkg/domain/metrics"
	"github.com/sprintlens/sprintlens/pkg/domain/team"
)

// Thresholds carries the injected rule-table cutoffs.
type Thresholds struct {
	LowCompletionRate      float64 `json:"low_completion_rate" yaml:"low_completion_rate"`
	CriticalCompletionRate float64 `json:"critical_completion_rate" yaml:"critical_completion_rate"`
	HighBlockerCount       int     `json:"high_blocker_count" yaml:"high_blocker_count"`
	HighOverdueCount       int     `json:"high_overdue_count" yaml:"high_overdue_count"`
	SevereBottleneckRatio  float64 `json:"severe_bottleneck_ratio" yaml:"severe_bottleneck_ratio"`
}

// DefaultThresholds returns the stock rule-table cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowCompletionRate:      70,
		CriticalCompletionRate: 50,
		HighBlockerCount:       2,
		HighOverdueCount:       3,
		SevereBottleneckRatio:  2.0,
	}
}

// Engine evaluates the risk rule table and emits recommendations.
// Rules fire independently; several may match at once. Results are derived
// fresh on every call, never cached or mutated.
type Engine struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// NewEngine creates an Engine. Zero-valued thresholds fall back to the
// defaults; a nil logger falls back to slog.Default.
func NewEngine(thresholds Thresholds, logger *slog.Logger) *Engine {
	def := DefaultThresholds()
	if thresholds.LowCompletionRate <= 0 {
		thresholds.LowCompletionRate = def.LowCompletionRate
	}
	if thresholds.CriticalCompletionRate <= 0 {
		thresholds.CriticalCompletionRate = def.CriticalCompletionRate
	}
	if thresholds.HighBlockerCount <= 0 {
		thresholds.HighBlockerCount = def.HighBlockerCount
	}
	if thresholds.HighOverdueCount <= 0 {
		thresholds.HighOverdueCount = def.HighOverdueCount
	}
	if thresholds.SevereBottleneckRatio <= 0 {
		thresholds.SevereBottleneckRatio = def.SevereBottleneckRatio
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{thresholds: thresholds, logger: logger}
}

// IdentifyRisks runs the rule table against the component results. A
// component that failed carries zeroed fields, which the rules read as-is;
// a zero completion rate from a failed metrics pass still counts as low.
func (e *Engine) IdentifyRisks(m metrics.SprintMetrics, perf team.Performance, rep flow.Report) []Risk {
	risks := []Risk{}

	if m.CompletionRate < e.thresholds.LowCompletionRate {
		severity := SeverityMedium
		if m.CompletionRate < e.thresholds.CriticalCompletionRate {
			severity = SeverityHigh
		}
		risks = append(risks, Risk{
			Category:    CategoryCompletionRate,
			Severity:    severity,
			Description: fmt.Sprintf("Low sprint completion rate (%.1f%%)", m.CompletionRate),
			Impact:      "Sprint goals may not be met by the end of the sprint",
		})
	}

	if len(m.Blockers) > 0 {
		severity := SeverityMedium
		if len(m.Blockers) > e.thresholds.HighBlockerCount {
			severity = SeverityHigh
		}
		risks = append(risks, Risk{
			Category:    CategoryBlockers,
			Severity:    severity,
			Description: fmt.Sprintf("%d blockers identified in the sprint", len(m.Blockers)),
			Impact:      "Blocking issues are preventing team progress",
		})
	}

	if len(m.ApproachingDeadlines) > 0 {
		risks = append(risks, Risk{
			Category:    CategoryApproachingDeadlines,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("%d tasks with approaching deadlines", len(m.ApproachingDeadlines)),
			Impact:      "Tasks may not be completed by their due dates",
		})
	}

	if len(m.OverdueCards) > 0 {
		severity := SeverityMedium
		if len(m.OverdueCards) > e.thresholds.HighOverdueCount {
			severity = SeverityHigh
		}
		risks = append(risks, Risk{
			Category:    CategoryOverdue,
			Severity:    severity,
			Description: fmt.Sprintf("%d overdue tasks", len(m.OverdueCards)),
			Impact:      "Tasks have already missed their deadlines",
		})
	}

	if len(perf.MembersWithHighWorkload) > 0 {
		risks = append(risks, Risk{
			Category:    CategoryWorkloadImbalance,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("%d team members have high workloads", len(perf.MembersWithHighWorkload)),
			Impact:      "Uneven workload distribution may lead to burnout and delays",
		})
	}

	if len(rep.Bottlenecks) > 0 {
		severity := SeverityMedium
		if rep.HasSevere(e.thresholds.SevereBottleneckRatio) {
			severity = SeverityHigh
		}
		risks = append(risks, Risk{
			Category:    CategoryProcessBottlenecks,
			Severity:    severity,
			Description: fmt.Sprintf("%d process bottlenecks identified", len(rep.Bottlenecks)),
			Impact:      "Tasks are piling up in specific stages of the process",
		})
	}

	e.logger.Info("identified sprint risks", "count", len(risks))
	return risks
}

// Recommend emits one recommendation per distinct risk category. The two
// deadline categories collapse into a single deadlines recommendation.
// With no risks at all, a single low-priority monitoring fallback is emitted.
func (e *Engine) Recommend(risks []Risk) []Recommendation {
	present := map[Category]bool{}
	for _, r := range risks {
		present[r.Category] = true
	}

	recommendations := []Recommendation{}

	if present[CategoryCompletionRate] {
		recommendations = append(recommendations, Recommendation{
			Category:    CategoryCompletionRate,
			Priority:    PriorityHigh,
			Description: "Review sprint scope and consider reducing the number of tasks",
			ActionItems: []string{
				"Conduct a mid-sprint scope review",
				"Identify and remove non-essential tasks",
				"Focus team efforts on highest priority items",
			},
		})
	}

	if present[CategoryBlockers] {
		recommendations = append(recommendations, Recommendation{
			Category:    CategoryBlockers,
			Priority:    PriorityHigh,
			Description: "Address blocking issues immediately",
			ActionItems: []string{
				"Schedule a blocker resolution session",
				"Escalate blockers to relevant stakeholders if needed",
				"Assign owners to each blocker with clear resolution timelines",
			},
		})
	}

	if present[CategoryApproachingDeadlines] || present[CategoryOverdue] {
		recommendations = append(recommendations, Recommendation{
			Category:    CategoryDeadlines,
			Priority:    PriorityHigh,
			Description: "Review and adjust task deadlines",
			ActionItems: []string{
				"Re-evaluate overdue and approaching deadline tasks",
				"Adjust timelines or reassign resources as needed",
				"Communicate changes to stakeholders",
			},
		})
	}

	if present[CategoryWorkloadImbalance] {
		recommendations = append(recommendations, Recommendation{
			Category:    CategoryWorkload,
			Priority:    PriorityMedium,
			Description: "Balance team workload",
			ActionItems: []string{
				"Redistribute tasks from overloaded team members",
				"Pair team members on complex tasks",
				"Consider bringing in additional resources if available",
			},
		})
	}

	if present[CategoryProcessBottlenecks] {
		recommendations = append(recommendations, Recommendation{
			Category:    CategoryProcess,
			Priority:    PriorityMedium,
			Description: "Address process bottlenecks",
			ActionItems: []string{
				"Focus team efforts on clearing bottlenecked stages",
				"Review process flow and identify improvement opportunities",
				"Consider temporary process adjustments for the current sprint",
			},
		})
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, Recommendation{
			Category:    CategoryGeneral,
			Priority:    PriorityLow,
			Description: "Continue monitoring sprint progress",
			ActionItems: []string{
				"Maintain daily stand-ups and communications",
				"Keep the board updated with the latest status",
				"Ensure team members are aware of their responsibilities",
			},
		})
	}

	e.logger.Info("generated recommendations", "count", len(recommendations))
	return recommendations
}
