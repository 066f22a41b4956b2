package application_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sprintlens/sprintlens/internal/application"
	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

func newReportService() *application.ReportService {
	analysis := application.NewAnalysisService(application.DefaultAnalysisConfig(), nil)
	return application.NewReportService(analysis, nil)
}

func TestReportService_Render(t *testing.T) {
	report := newReportService().Render(sprintRaw(), application.Options{
		SprintName: "Sprint 12",
		TeamName:   "Platform",
	})

	for _, want := range []string{
		"# Sprint Report: Sprint 12",
		"**Team:** Platform",
		"**Board:** b1",
		"- **Total Cards:** 10",
		"- **Completion Rate:** 30.0%",
		"- **Velocity:** 3 of 10 tasks completed (30.0%)",
		"| Done | 3 | 30.0% |",
		"| To Do | 7 | 70.0% |",
		"No blockers identified.",
		"No tasks approaching deadlines.",
		"No overdue tasks.",
		"No team member data available.",
		"No process bottlenecks identified.",
		"- **[HIGH]** Low sprint completion rate (30.0%)",
		"Review sprint scope and consider reducing the number of tasks",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestReportService_Render_ErrorEnvelope(t *testing.T) {
	report := newReportService().Render(&board.RawSnapshot{Error: "boom"}, application.Options{})

	if report != "# Error Generating Sprint Report\n\nboom" {
		t.Errorf("report = %q", report)
	}
}

func TestReportService_Render_NilSnapshot(t *testing.T) {
	report := newReportService().Render(nil, application.Options{})

	want := "# Error Generating Sprint Report\n\nUnknown error retrieving board data"
	if report != want {
		t.Errorf("report = %q, want %q", report, want)
	}
}

func TestReportService_Generate_CustomTemplate(t *testing.T) {
	svc := newReportService()
	analysis := application.NewAnalysisService(application.DefaultAnalysisConfig(), nil)
	result, err := analysis.Analyze(sprintRaw())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "custom.md")
	if err := os.WriteFile(path, []byte("{sprint_name}|{total_cards}|{unknown}"), 0600); err != nil {
		t.Fatal(err)
	}

	report, err := svc.Generate("b1", result, application.Options{TemplatePath: path})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report != "Current Sprint|10|{unknown}" {
		t.Errorf("report = %q", report)
	}
}

func TestReportService_Generate_MissingTemplate(t *testing.T) {
	svc := newReportService()
	analysis := application.NewAnalysisService(application.DefaultAnalysisConfig(), nil)
	result, err := analysis.Analyze(sprintRaw())
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Generate("b1", result, application.Options{
		TemplatePath: filepath.Join(t.TempDir(), "absent.md"),
	})
	if err == nil {
		t.Fatal("Generate succeeded with a missing template")
	}
}

func TestReportService_Generate_NilResult(t *testing.T) {
	if _, err := newReportService().Generate("b1", nil, application.Options{}); err == nil {
		t.Fatal("Generate succeeded with a nil result")
	}
}
