package application

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

//go:embed templates/report.md
var defaultTemplate string

// DefaultSprintName and DefaultTeamName fill the report header when no
// names are configured.
const (
	DefaultSprintName = "Current Sprint"
	DefaultTeamName   = "Development Team"
)

// Options carries the report header fields and template override.
type Options struct {
	SprintName   string
	TeamName     string
	TemplatePath string
}

// ReportService renders markdown sprint reports from analysis results.
type ReportService struct {
	analysis *AnalysisService
	logger   *slog.Logger
	now      func() time.Time
}

func NewReportService(analysis *AnalysisService, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		analysis: analysis,
		logger:   logger,
		now:      time.Now,
	}
}

// ErrorReport renders the failure page returned when the snapshot or
// the analysis carried an error.
func ErrorReport(msg string) string {
	return "# Error Generating Sprint Report\n\n" + msg
}

// Render analyzes a raw snapshot and renders the report, folding any
// pipeline failure into the error page so watchers and one-shot runs
// always produce a document.
func (s *ReportService) Render(raw *board.RawSnapshot, opts Options) string {
	result, err := s.analysis.Analyze(raw)
	if err != nil {
		s.logger.Error("error generating sprint report", "error", err)
		return ErrorReport(err.Error())
	}

	report, err := s.Generate(boardID(raw), result, opts)
	if err != nil {
		s.logger.Error("error generating sprint report", "error", err)
		return ErrorReport(err.Error())
	}
	return report
}

// Generate fills the report template from an analysis result.
func (s *ReportService) Generate(boardID string, result *Result, opts Options) (string, error) {
	if result == nil {
		return "", fmt.Errorf("analysis result is nil")
	}
	if opts.SprintName == "" {
		opts.SprintName = DefaultSprintName
	}
	if opts.TeamName == "" {
		opts.TeamName = DefaultTeamName
	}

	s.logger.Info("generating sprint report", "sprint", opts.SprintName)

	tmpl := defaultTemplate
	if opts.TemplatePath != "" {
		// #nosec G304 -- the template path is supplied by the operator
		data, err := os.ReadFile(opts.TemplatePath)
		if err != nil {
			return "", fmt.Errorf("read template: %w", err)
		}
		tmpl = string(data)
	}

	report := fillTemplate(tmpl, s.templateContext(boardID, result, opts))

	s.logger.Info("successfully generated sprint report")
	return report, nil
}

func (s *ReportService) templateContext(boardID string, r *Result, opts Options) map[string]string {
	m := r.SprintMetrics
	return map[string]string{
		"sprint_name":           opts.SprintName,
		"team_name":             opts.TeamName,
		"date":                  s.now().Format("2006-01-02"),
		"board_id":              boardID,
		"total_cards":           strconv.Itoa(m.TotalCards),
		"completion_rate":       fmt.Sprintf("%.1f%%", m.CompletionRate),
		"status_table":          formatStatusTable(m.CardsByList, m.TotalCards),
		"blockers":              formatBlockers(m.Blockers),
		"approaching_deadlines": formatApproachingDeadlines(m.ApproachingDeadlines),
		"overdue_tasks":         formatOverdueTasks(m.OverdueCards),
		"workload_distribution": formatWorkloadDistribution(r.TeamPerformance.CardsByMember),
		"bottlenecks":           formatBottlenecks(r.ProcessBottlenecks.Bottlenecks),
		"risks":                 formatRisks(r.Risks),
		"recommendations":       formatRecommendations(r.Recommendations),
		"velocity_summary":      velocitySummary(r.Velocity),
		"projected_completion":  projectionText(r.BurnDown.ProjectedCompletion),
	}
}

// fillTemplate replaces {key} placeholders literally, leaving unknown
// placeholders in place.
func fillTemplate(tmpl string, context map[string]string) string {
	for key, value := range context {
		tmpl = strings.ReplaceAll(tmpl, "{"+key+"}", value)
	}
	return tmpl
}

func boardID(raw *board.RawSnapshot) string {
	if raw == nil {
		return ""
	}
	return raw.BoardID
}
