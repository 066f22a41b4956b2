package application

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sprintlens/sprintlens/pkg/domain/analytics"
	"github.com/sprintlens/sprintlens/pkg/domain/board"
	"github.com/sprintlens/sprintlens/pkg/domain/flow"
	"github.com/sprintlens/sprintlens/pkg/domain/metrics"
	"github.com/sprintlens/sprintlens/pkg/domain/risk"
	"github.com/sprintlens/sprintlens/pkg/domain/team"
)

// Result is the full analysis envelope. SprintEndDate and DaysRemaining are
// always null; no sprint-calendar integration exists to fill them.
type Result struct {
	Timestamp          string                `json:"timestamp" yaml:"timestamp"`
	SprintMetrics      metrics.SprintMetrics `json:"sprint_metrics" yaml:"sprint_metrics"`
	TeamPerformance    team.Performance      `json:"team_performance" yaml:"team_performance"`
	ProcessBottlenecks flow.Report           `json:"process_bottlenecks" yaml:"process_bottlenecks"`
	BurnDown           analytics.Burndown    `json:"burn_down" yaml:"burn_down"`
	Velocity           analytics.Velocity    `json:"velocity" yaml:"velocity"`
	Risks              []risk.Risk           `json:"risks" yaml:"risks"`
	Recommendations    []risk.Recommendation `json:"recommendations" yaml:"recommendations"`
	SprintEndDate      *string               `json:"sprint_end_date" yaml:"sprint_end_date"`
	DaysRemaining      *int                  `json:"days_remaining" yaml:"days_remaining"`
}

// AnalysisConfig bundles the tunable knobs for one analysis pipeline.
type AnalysisConfig struct {
	Metrics   metrics.Config
	Team      team.Config
	Flow      flow.Config
	Risk      risk.Thresholds
	Estimator analytics.Config
}

// DefaultAnalysisConfig returns the stock pipeline knobs.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Metrics:   metrics.DefaultConfig(),
		Team:      team.DefaultConfig(),
		Flow:      flow.DefaultConfig(),
		Risk:      risk.DefaultThresholds(),
		Estimator: analytics.DefaultConfig(),
	}
}

// AnalysisService runs the full analysis pipeline over a board snapshot:
// normalization, metrics, team performance, bottlenecks, risks,
// recommendations, and burn-down estimates. Each run is stateless and
// side-effect free, so independent goroutines may analyze separate
// snapshots concurrently.
type AnalysisService struct {
	normalizer *board.Normalizer
	calculator *metrics.Calculator
	team       *team.Analyzer
	flow       *flow.Detector
	engine     *risk.Engine
	estimator  *analytics.Estimator
	logger     *slog.Logger
	now        func() time.Time
}

// NewAnalysisService wires an analysis pipeline from the given knobs.
// A nil logger falls back to slog.Default.
func NewAnalysisService(cfg AnalysisConfig, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		normalizer: board.NewNormalizer(logger),
		calculator: metrics.NewCalculator(cfg.Metrics, logger),
		team:       team.NewAnalyzer(cfg.Team, logger),
		flow:       flow.NewDetector(cfg.Flow, logger),
		engine:     risk.NewEngine(cfg.Risk, logger),
		estimator:  analytics.NewEstimator(cfg.Estimator, logger),
		logger:     logger,
		now:        time.Now,
	}
}

// Analyze normalizes a raw snapshot and analyzes it. An upstream error in
// the snapshot propagates verbatim and no partial analysis is produced.
func (s *AnalysisService) Analyze(raw *board.RawSnapshot) (*Result, error) {
	snap, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeSnapshot(snap)
}

// AnalyzeSnapshot analyzes an already-normalized snapshot.
func (s *AnalysisService) AnalyzeSnapshot(snap *board.Snapshot) (res *Result, err error) {
	s.logger.Info("analyzing sprint data")

	if snap == nil {
		s.logger.Error("error in processed data", "error", "no snapshot")
		return nil, &board.UpstreamError{Msg: "Unknown error in processed data"}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("error analyzing sprint data", "error", r)
			res = nil
			err = fmt.Errorf("Error analyzing sprint data: %v", r)
		}
	}()

	s.logger.Info("analyzing board snapshot",
		"cards", len(snap.Cards),
		"lists", len(snap.Lists),
		"members", len(snap.Members))

	sprintMetrics := s.calculator.Compute(snap.Cards, snap.Lists)
	performance := s.team.Analyze(snap.Cards, snap.Members)
	bottlenecks := s.flow.Detect(snap.Cards, snap.Lists)

	burndown := s.estimator.Burndown(snap.Cards)
	velocity := s.estimator.Velocity(snap.Cards)

	risks := s.engine.IdentifyRisks(sprintMetrics, performance, bottlenecks)
	recommendations := s.engine.Recommend(risks)

	result := &Result{
		Timestamp:          s.now().Format(time.RFC3339),
		SprintMetrics:      sprintMetrics,
		TeamPerformance:    performance,
		ProcessBottlenecks: bottlenecks,
		BurnDown:           burndown,
		Velocity:           velocity,
		Risks:              risks,
		Recommendations:    recommendations,
	}

	s.logger.Info("successfully analyzed sprint data")
	return result, nil
}
