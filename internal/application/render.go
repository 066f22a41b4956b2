package application

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sprintlens/sprintlens/pkg/domain/analytics"
	"github.com/sprintlens/sprintlens/pkg/domain/board"
	"github.com/sprintlens/sprintlens/pkg/domain/flow"
	"github.com/sprintlens/sprintlens/pkg/domain/metrics"
	"github.com/sprintlens/sprintlens/pkg/domain/risk"
	"github.com/sprintlens/sprintlens/pkg/domain/team"
)

// FormatDate renders an ISO 8601 timestamp as YYYY-MM-DD. Empty input
// renders as "Not set", unparsable input as "Invalid date".
func FormatDate(s string) string {
	if s == "" {
		return "Not set"
	}
	t, err := board.ParseTimestamp(s)
	if err != nil {
		slog.Warn("error formatting date", "value", s, "error", err)
		return "Invalid date"
	}
	return t.Format("2006-01-02")
}

// formatStatusTable renders the per-list rows of the status table,
// ordered by list name. The template supplies the header.
func formatStatusTable(cardsByList map[string]int, totalCards int) string {
	names := make([]string, 0, len(cardsByList))
	for name := range cardsByList {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]string, 0, len(names))
	for _, name := range names {
		count := cardsByList[name]
		percentage := 0.0
		if totalCards > 0 {
			percentage = float64(count) / float64(totalCards) * 100
		}
		rows = append(rows, fmt.Sprintf("| %s | %d | %.1f%% |", name, count, percentage))
	}
	return strings.Join(rows, "\n")
}

func formatBlockers(blockers []metrics.BlockerEntry) string {
	if len(blockers) == 0 {
		return "No blockers identified."
	}
	items := make([]string, 0, len(blockers))
	for _, b := range blockers {
		items = append(items, fmt.Sprintf("- **[%s](%s)** - In list: *%s*",
			orDefault(b.Name, "Unnamed card"),
			orDefault(b.URL, "#"),
			orDefault(b.List, "Unknown list")))
	}
	return strings.Join(items, "\n")
}

func formatApproachingDeadlines(entries []metrics.DeadlineEntry) string {
	if len(entries) == 0 {
		return "No tasks approaching deadlines."
	}
	return formatDeadlineItems(entries)
}

func formatOverdueTasks(entries []metrics.DeadlineEntry) string {
	if len(entries) == 0 {
		return "No overdue tasks."
	}
	return formatDeadlineItems(entries)
}

func formatDeadlineItems(entries []metrics.DeadlineEntry) string {
	items := make([]string, 0, len(entries))
	for _, e := range entries {
		items = append(items, fmt.Sprintf("- **%s** - Due: *%s* - In list: *%s*",
			orDefault(e.Name, "Unnamed card"),
			FormatDate(e.Due),
			orDefault(e.List, "Unknown list")))
	}
	return strings.Join(items, "\n")
}

func formatWorkloadDistribution(cardsByMember map[string]*team.MemberStats) string {
	if len(cardsByMember) == 0 {
		return "No team member data available."
	}

	names := make([]string, 0, len(cardsByMember))
	for name := range cardsByMember {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("| Team Member | Total Tasks | Completed | Completion Rate | Overdue |\n")
	sb.WriteString("|------------|-------------|-----------|----------------|--------|\n")

	rows := make([]string, 0, len(names))
	for _, name := range names {
		stats := cardsByMember[name]
		if stats == nil {
			continue
		}
		rows = append(rows, fmt.Sprintf("| %s | %d | %d | %.1f%% | %d |",
			name, stats.Total, stats.Completed, stats.CompletionRate, stats.Overdue))
	}
	sb.WriteString(strings.Join(rows, "\n"))
	return sb.String()
}

func formatBottlenecks(bottlenecks []flow.Bottleneck) string {
	if len(bottlenecks) == 0 {
		return "No process bottlenecks identified."
	}
	items := make([]string, 0, len(bottlenecks))
	for _, b := range bottlenecks {
		items = append(items, fmt.Sprintf("- **%s** - %d tasks (%.1fx average)",
			b.ListName, b.CardCount, b.RatioToAvg))
	}
	return strings.Join(items, "\n")
}

func formatRisks(risks []risk.Risk) string {
	if len(risks) == 0 {
		return "No risks identified."
	}
	items := make([]string, 0, len(risks))
	for _, r := range risks {
		items = append(items, fmt.Sprintf("- **[%s]** %s\n  - *Impact:* %s",
			strings.ToUpper(string(r.Severity)), r.Description, r.Impact))
	}
	return strings.Join(items, "\n")
}

func formatRecommendations(recs []risk.Recommendation) string {
	if len(recs) == 0 {
		return "No recommendations available."
	}
	items := make([]string, 0, len(recs))
	for _, rec := range recs {
		var sb strings.Builder
		fmt.Fprintf(&sb, "- **[%s]** %s",
			strings.ToUpper(string(rec.Priority)), rec.Description)
		for _, action := range rec.ActionItems {
			fmt.Fprintf(&sb, "\n  - %s", action)
		}
		items = append(items, sb.String())
	}
	return strings.Join(items, "\n")
}

func velocitySummary(v analytics.Velocity) string {
	cs := v.CurrentSprint
	return fmt.Sprintf("%d of %d tasks completed (%.1f%%)",
		cs.CompletedPoints, cs.TotalPoints, cs.CompletionPercentage)
}

func projectionText(p analytics.Projection) string {
	if _, ok := p.Days(); !ok {
		return p.String()
	}
	return p.String() + " days"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
