package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sprintlens/sprintlens/internal/application"
	"github.com/sprintlens/sprintlens/internal/infrastructure/store"
	"github.com/sprintlens/sprintlens/internal/infrastructure/wiring"
	"github.com/sprintlens/sprintlens/pkg/domain/analytics"
	"github.com/sprintlens/sprintlens/pkg/domain/risk"
	"github.com/sprintlens/sprintlens/pkg/domain/team"
)

// Flag variables for analyze command
var (
	analyzeFetch  bool
	analyzeOutput string
)

const (
	outputJSON = "json"
	outputText = "text"
)

// Styles for the text renderer
var (
	sectionStyle      = lipgloss.NewStyle().Bold(true)
	severityHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	severityMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	severityLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [snapshot.json...]",
	Short: "Analyze board snapshots for sprint health",
	Long: `Analyze one or more snapshot files, or fetch live data with --fetch.

Multiple files are analyzed concurrently and printed in argument order.

Flags:
  --fetch     Fetch from the configured source instead of reading files
  --output    Output format: text (styled summary) or json (full envelope)

Examples:
  sprintlens analyze board.json
  sprintlens analyze sprint-*.json --output json
  sprintlens analyze --fetch`,
	RunE: runAnalyzeCmd,
}

// analyzeItem is one snapshot's analysis outcome, labeled by where the
// snapshot came from.
type analyzeItem struct {
	Source string
	Result *application.Result
	Err    error
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	if analyzeOutput != outputJSON && analyzeOutput != outputText {
		return fmt.Errorf("unknown output format %q (expected json or text)", analyzeOutput)
	}
	if !analyzeFetch && len(args) == 0 {
		return fmt.Errorf("no snapshot files given (pass files or --fetch)")
	}

	services, err := loadServices()
	if err != nil {
		return err
	}

	var items []analyzeItem
	if analyzeFetch {
		snap := services.Collect.Collect(cmd.Context())
		result, err := services.Analysis.Analyze(snap)
		items = []analyzeItem{{Source: services.Source.Name(), Result: result, Err: err}}
	} else {
		items = analyzeFiles(services, args)
	}

	if analyzeOutput == outputJSON {
		if err := printAnalysisJSON(items); err != nil {
			return err
		}
	} else {
		printAnalysisText(items)
	}

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("analysis failed for %d of %d snapshots", failed, len(items))
	}
	return nil
}

// analyzeFiles runs one goroutine per snapshot file. Results land in
// argument order regardless of completion order.
func analyzeFiles(services *wiring.AppServices, paths []string) []analyzeItem {
	items := make([]analyzeItem, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			items[i] = analyzeFile(services, path)
		}(i, path)
	}
	wg.Wait()

	return items
}

func analyzeFile(services *wiring.AppServices, path string) analyzeItem {
	raw, err := store.ReadSnapshotFile(path)
	if err != nil {
		return analyzeItem{Source: path, Err: err}
	}
	result, err := services.Analysis.Analyze(raw)
	return analyzeItem{Source: path, Result: result, Err: err}
}

func printAnalysisJSON(items []analyzeItem) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, item := range items {
		if item.Err != nil {
			if err := enc.Encode(map[string]string{"error": item.Err.Error()}); err != nil {
				return err
			}
			continue
		}
		if err := enc.Encode(item.Result); err != nil {
			return err
		}
	}
	return nil
}

func printAnalysisText(items []analyzeItem) {
	for i, item := range items {
		if i > 0 {
			fmt.Println()
		}
		printResultText(item)
	}
}

func printResultText(item analyzeItem) {
	fmt.Println(sectionStyle.Render("Sprint Health: " + item.Source))
	if item.Err != nil {
		fmt.Println(severityHighStyle.Render("  " + item.Err.Error()))
		return
	}

	r := item.Result
	m := r.SprintMetrics

	fmt.Printf("Cards: %d total, %.1f%% complete\n", m.TotalCards, m.CompletionRate)
	cs := r.Velocity.CurrentSprint
	fmt.Printf("Velocity: %d/%d points (%.1f%%)\n", cs.CompletedPoints, cs.TotalPoints, cs.CompletionPercentage)
	fmt.Printf("Projected completion: %s\n", projectionLabel(r.BurnDown.ProjectedCompletion))

	if len(m.CardsByList) > 0 {
		fmt.Println()
		fmt.Println(sectionStyle.Render("Status Distribution"))
		fmt.Println(statusTable(m.CardsByList, m.TotalCards))
	}

	if len(m.Blockers) > 0 {
		fmt.Println(sectionStyle.Render(fmt.Sprintf("Blockers (%d)", m.BlockersCount)))
		for _, b := range m.Blockers {
			fmt.Printf("  - %s (in %s)\n", b.Name, b.List)
		}
	}
	if len(m.ApproachingDeadlines) > 0 {
		fmt.Println(sectionStyle.Render(fmt.Sprintf("Approaching Deadlines (%d)", m.ApproachingDeadlinesCount)))
		for _, d := range m.ApproachingDeadlines {
			fmt.Printf("  - %s, due %s (in %s)\n", d.Name, application.FormatDate(d.Due), d.List)
		}
	}
	if len(m.OverdueCards) > 0 {
		fmt.Println(sectionStyle.Render(fmt.Sprintf("Overdue (%d)", m.OverdueCount)))
		for _, d := range m.OverdueCards {
			fmt.Printf("  - %s, due %s (in %s)\n", d.Name, application.FormatDate(d.Due), d.List)
		}
	}

	if len(r.TeamPerformance.CardsByMember) > 0 {
		fmt.Println()
		fmt.Println(sectionStyle.Render("Team Workload"))
		fmt.Println(workloadTable(r.TeamPerformance))
		for _, hw := range r.TeamPerformance.MembersWithHighWorkload {
			fmt.Println(severityMedStyle.Render(
				fmt.Sprintf("  High workload: %s (%d cards, %.1fx average)", hw.Name, hw.CardsCount, hw.AvgRatio)))
		}
	}

	if len(r.ProcessBottlenecks.Bottlenecks) > 0 {
		fmt.Println()
		fmt.Println(sectionStyle.Render("Bottlenecks"))
		for _, b := range r.ProcessBottlenecks.Bottlenecks {
			fmt.Printf("  - %s: %d cards (%.1fx average)\n", b.ListName, b.CardCount, b.RatioToAvg)
		}
	}

	fmt.Println()
	fmt.Println(sectionStyle.Render("Risks"))
	if len(r.Risks) == 0 {
		fmt.Println("  No risks identified.")
	}
	for _, rk := range r.Risks {
		style := severityStyle(rk.Severity)
		fmt.Println(style.Render(fmt.Sprintf("  [%s] %s", strings.ToUpper(string(rk.Severity)), rk.Description)))
		if rk.Impact != "" {
			fmt.Printf("        %s\n", rk.Impact)
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Println()
		fmt.Println(sectionStyle.Render("Recommendations"))
		for _, rec := range r.Recommendations {
			style := priorityStyle(rec.Priority)
			fmt.Println(style.Render(fmt.Sprintf("  [%s] %s", strings.ToUpper(string(rec.Priority)), rec.Description)))
			for _, action := range rec.ActionItems {
				fmt.Printf("        - %s\n", action)
			}
		}
	}
}

func projectionLabel(p analytics.Projection) string {
	days, ok := p.Days()
	if !ok {
		return "Cannot estimate"
	}
	return fmt.Sprintf("%.1f days", days)
}

func severityStyle(s risk.Severity) lipgloss.Style {
	if s == risk.SeverityHigh {
		return severityHighStyle
	}
	return severityMedStyle
}

func priorityStyle(p risk.Priority) lipgloss.Style {
	switch p {
	case risk.PriorityHigh:
		return severityHighStyle
	case risk.PriorityMedium:
		return severityMedStyle
	default:
		return severityLowStyle
	}
}

// statusTable renders the cards-per-list distribution as a static table,
// lists sorted by name.
func statusTable(cardsByList map[string]int, total int) string {
	names := make([]string, 0, len(cardsByList))
	for name := range cardsByList {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]table.Row, 0, len(names))
	for _, name := range names {
		count := cardsByList[name]
		pct := 0.0
		if total > 0 {
			pct = float64(count) / float64(total) * 100
		}
		rows = append(rows, table.Row{name, strconv.Itoa(count), fmt.Sprintf("%.1f%%", pct)})
	}

	columns := []table.Column{
		{Title: "List", Width: 28},
		{Title: "Cards", Width: 6},
		{Title: "Share", Width: 7},
	}
	return renderTable(columns, rows)
}

// workloadTable renders per-member stats as a static table, members sorted
// by name.
func workloadTable(perf team.Performance) string {
	names := make([]string, 0, len(perf.CardsByMember))
	for name := range perf.CardsByMember {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]table.Row, 0, len(names))
	for _, name := range names {
		stats := perf.CardsByMember[name]
		if stats == nil {
			continue
		}
		rows = append(rows, table.Row{
			name,
			strconv.Itoa(stats.Total),
			strconv.Itoa(stats.Completed),
			fmt.Sprintf("%.1f%%", stats.CompletionRate),
			strconv.Itoa(stats.Overdue),
		})
	}

	columns := []table.Column{
		{Title: "Member", Width: 24},
		{Title: "Total", Width: 6},
		{Title: "Done", Width: 6},
		{Title: "Rate", Width: 7},
		{Title: "Overdue", Width: 8},
	}
	return renderTable(columns, rows)
}

func renderTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Bold(true)
	s.Selected = lipgloss.NewStyle() // Disable selection style for static view
	t.SetStyles(s)

	return t.View()
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeFetch, "fetch", false,
		"Fetch from the configured source instead of reading files")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", outputText,
		"Output format (text or json)")
	RootCmd.AddCommand(analyzeCmd)
}
