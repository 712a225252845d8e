// Package pipeline runs the matching pipeline: parse the job description,
// pre-screen the whole pool, truncate to the analysis budget, deep-analyse
// the shortlist, then blend and rank.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/analysis"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/matching"
	"github.com/spigell/cv-matcher/internal/requirements"
	"github.com/spigell/cv-matcher/internal/screening"
)

// Stage names used in logs and stats.
const (
	StageParse        = "parse"
	StagePreScreen    = "pre_screen"
	StageDeepAnalysis = "deep_analysis"
	StageMerge        = "merge"
)

// Request is the caller-facing form of a run.
type Request struct {
	JobDescription string                  `json:"jobDescription"`
	Weights        matching.PartialWeights `json:"weights,omitempty"`
	MaxResults     int                     `json:"maxResults"`
}

// Orchestrator sequences the stages of a run. It keeps no state between
// runs and is safe for concurrent use.
type Orchestrator struct {
	cfg      Config
	parser   *requirements.Parser
	analyzer *analysis.Analyzer
	logger   *zap.Logger
	newID    func() string
}

// New validates cfg and wires the parser and analyzer to generator.
func New(generator ai.Generator, cfg Config, log *zap.Logger) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Orchestrator{
		cfg:    cfg,
		parser: requirements.NewParser(generator, cfg.MinDescriptionLength, log).
			WithMaxLogLength(cfg.MaxLogLength),
		analyzer: analysis.NewAnalyzer(generator, analysis.Config{
			BatchSize:    cfg.BatchSize,
			Concurrency:  cfg.Concurrency,
			MaxLogLength: cfg.MaxLogLength,
		}, log),
		logger: log,
		newID:  uuid.NewString,
	}, nil
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// Handle merges the request's weight overrides over the configured weights
// and runs the pipeline.
func (o *Orchestrator) Handle(ctx context.Context, pool []matching.CandidateProfile, req Request) (matching.PipelineResult, error) {
	return o.Run(ctx, pool, req.JobDescription, o.cfg.Weights.Merge(req.Weights), req.MaxResults)
}

// Run executes one pipeline run. Only input validation and requirement
// extraction fail the run; deep-analysis failures shrink the result.
func (o *Orchestrator) Run(
	ctx context.Context,
	pool []matching.CandidateProfile,
	jobText string,
	weights matching.MatchWeights,
	maxResults int,
) (matching.PipelineResult, error) {
	started := time.Now()
	runID := o.newID()
	runLog := logger.WithFields(o.logger, zap.String(logger.FieldRunID, runID))

	pool, err := validateInput(pool, weights, maxResults)
	if err != nil {
		runLog.Warn("pipeline input rejected", zap.Error(err))
		return matching.PipelineResult{}, err
	}

	durations := make(map[string]int64, 4)
	stage := func(name string, began time.Time) {
		durations[name] = time.Since(began).Milliseconds()
	}

	// parse
	began := time.Now()
	parseLog := logger.WithStage(o.logger, runID, StageParse)
	req, err := o.parser.WithLogger(parseLog).Parse(ctx, jobText)
	if err != nil {
		parseLog.Error("requirement extraction failed", zap.Error(err))
		return matching.PipelineResult{}, err
	}
	stage(StageParse, began)

	// pre-screen
	began = time.Now()
	ranked := screening.Rank(pool, req, weights)
	requested := min(maxResults, o.cfg.AnalysisBudgetCap, len(ranked))
	shortlist := screening.Top(ranked, requested)
	stage(StagePreScreen, began)

	logger.WithStage(o.logger, runID, StagePreScreen).Info("pool pre-screened",
		zap.Int("total_candidates", len(pool)),
		zap.Int("shortlisted", requested),
		zap.Int("max_results", maxResults),
		zap.Int("analysis_budget_cap", o.cfg.AnalysisBudgetCap),
	)

	// deep analysis
	began = time.Now()
	analysisLog := logger.WithStage(o.logger, runID, StageDeepAnalysis)
	outcome := o.analyze(ctx, req, shortlist, weights, analysisLog)
	stage(StageDeepAnalysis, began)

	// merge and final rank
	began = time.Now()
	matches := merge(shortlist, outcome.Assessments, o.cfg.Blend)
	stage(StageMerge, began)

	stats := matching.Stats{
		TotalCandidates:        len(pool),
		PreScreenedCount:       len(ranked),
		AIAnalyzedCount:        len(matches),
		ProcessingTimeMs:       time.Since(started).Milliseconds(),
		RequestedAnalysisCount: requested,
		FailedAnalysisCount:    requested - len(matches),
		StageDurationsMs:       durations,
	}

	if stats.Partial() {
		analysisLog.Warn("partial analysis result",
			zap.Int("requested", stats.RequestedAnalysisCount),
			zap.Int("analyzed", stats.AIAnalyzedCount),
			zap.Int("failed", stats.FailedAnalysisCount),
		)
	}

	runLog.Info("pipeline finished",
		zap.Int("matches", len(matches)),
		zap.Int64("processing_time_ms", stats.ProcessingTimeMs),
	)

	return matching.PipelineResult{
		Matches:            matches,
		ParsedRequirements: req,
		Stats:              stats,
	}, nil
}

func (o *Orchestrator) analyze(
	ctx context.Context,
	req matching.ParsedJobRequirement,
	shortlist []screening.Ranked,
	weights matching.MatchWeights,
	log *zap.Logger,
) analysis.Result {
	if len(shortlist) == 0 {
		return analysis.Result{}
	}

	if o.cfg.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.AnalysisTimeout)
		defer cancel()
	}

	profiles := make([]matching.CandidateProfile, len(shortlist))
	for i, r := range shortlist {
		profiles[i] = r.Candidate
	}

	outcome := o.analyzer.WithLogger(log).Analyze(ctx, req, profiles, weights)
	for _, failure := range outcome.Failures {
		log.Warn("candidate dropped from result",
			logger.Candidate(failure.CandidateID),
			logger.Batch(failure.Batch),
			zap.Error(failure.Err),
		)
	}
	return outcome
}

// merge builds a result for every shortlisted candidate that was assessed
// and orders them by final score, algorithmic score, then shortlist position.
func merge(shortlist []screening.Ranked, assessments map[string]matching.DeepAssessment, blend matching.Blend) []matching.EnrichedMatchResult {
	type entry struct {
		position int
		result   matching.EnrichedMatchResult
	}

	entries := make([]entry, 0, len(assessments))
	for position, r := range shortlist {
		assessment, ok := assessments[r.Candidate.ID]
		if !ok {
			continue
		}

		score := r.Assessment.Score
		aiScore := assessment.AIScore
		entries = append(entries, entry{
			position: position,
			result: matching.EnrichedMatchResult{
				CandidateID:           r.Candidate.ID,
				CandidateName:         r.Candidate.Name,
				AlgorithmicScore:      score.CompositeScore,
				AIScore:               &aiScore,
				FinalScore:            blend.Apply(score.CompositeScore, aiScore),
				ScoreBasis:            matching.ScoreBasisBlend,
				Blend:                 blend,
				PreScreening:          score,
				SkillsMatched:         assessment.SkillsMatched,
				SkillsMissing:         assessment.SkillsMissing,
				SkillsPartial:         assessment.SkillsPartial,
				Strengths:             assessment.Strengths,
				FitConcerns:           assessment.FitConcerns,
				InterviewQuestions:    assessment.InterviewQuestions,
				Explanation:           assessment.Explanation,
				OverqualificationRisk: assessment.OverqualificationRisk,
				CareerTrajectoryFit:   assessment.CareerTrajectoryFit,
				SalaryExpectationFit:  assessment.SalaryExpectationFit,
			},
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.result.FinalScore != b.result.FinalScore {
			return a.result.FinalScore > b.result.FinalScore
		}
		if a.result.AlgorithmicScore != b.result.AlgorithmicScore {
			return a.result.AlgorithmicScore > b.result.AlgorithmicScore
		}
		return a.position < b.position
	})

	matches := make([]matching.EnrichedMatchResult, len(entries))
	for i, e := range entries {
		matches[i] = e.result
	}
	return matches
}

// validateInput checks the run arguments and returns a copy of pool with
// candidate ids trimmed, so every stage compares the same ids.
func validateInput(
	pool []matching.CandidateProfile,
	weights matching.MatchWeights,
	maxResults int,
) ([]matching.CandidateProfile, error) {
	if maxResults < 1 {
		return nil, &ValidationError{Field: "maxResults", Message: fmt.Sprintf("must be at least 1, got %d", maxResults)}
	}

	if err := validateStruct(weights); err != nil {
		return nil, err
	}
	if weights.Sum() <= 0 {
		return nil, &ValidationError{Field: "weights", Message: "at least one weight must be positive"}
	}

	trimmed := make([]matching.CandidateProfile, len(pool))
	seen := make(map[string]struct{}, len(pool))
	for i, c := range pool {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			return nil, &ValidationError{Field: "candidatePool", Message: fmt.Sprintf("candidate at index %d has no id", i)}
		}
		if _, dup := seen[c.ID]; dup {
			return nil, &ValidationError{Field: "candidatePool", Message: fmt.Sprintf("duplicate candidate id %q", c.ID)}
		}
		seen[c.ID] = struct{}{}
		trimmed[i] = c
	}

	return trimmed, nil
}
