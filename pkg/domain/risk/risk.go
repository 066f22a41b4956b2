// Package risk maps sprint metrics, team performance, and flow reports to
// risk entries and actionable recommendations through a fixed rule table.
package risk

type Category string

const (
	CategoryCompletionRate       Category = "completion_rate"
	CategoryBlockers             Category = "blockers"
	CategoryApproachingDeadlines Category = "approaching_deadlines"
	CategoryOverdue              Category = "overdue"
	CategoryWorkloadImbalance    Category = "workload_imbalance"
	CategoryProcessBottlenecks   Category = "process_bottlenecks"
	CategoryDeadlines            Category = "deadlines" // recommendation-only, collapses the two deadline risks
	CategoryWorkload             Category = "workload"  // recommendation-side name for workload_imbalance
	CategoryProcess              Category = "process"   // recommendation-side name for process_bottlenecks
	CategoryGeneral              Category = "general"
)

type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Risk is a single detected sprint risk.
type Risk struct {
	Category    Category `json:"category" yaml:"category"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
	Impact      string   `json:"impact" yaml:"impact"`
}

// Recommendation is one suggested intervention with its action items.
type Recommendation struct {
	Category    Category `json:"category" yaml:"category"`
	Priority    Priority `json:"priority" yaml:"priority"`
	Description string   `json:"description" yaml:"description"`
	ActionItems []string `json:"action_items" yaml:"action_items"`
}

// AnyHigh reports whether any risk in the slice carries high severity.
func AnyHigh(risks []Risk) bool {
	for _, r := range risks {
		if r.Severity == SeverityHigh {
			return true
		}
	}
	return false
}
