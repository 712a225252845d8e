// Package analysis runs the expensive model-backed assessment over the
// shortlisted candidates. It never decides how many candidates to analyse.
package analysis

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/matching"
	"github.com/spigell/cv-matcher/internal/schemas"
	"github.com/spigell/cv-matcher/internal/screening"
	"github.com/spigell/cv-matcher/internal/utils"
)

const (
	DefaultBatchSize    = 5
	DefaultConcurrency  = 3
	DefaultMaxLogLength = 200
)

// ErrSkipped marks candidates whose batch never ran because an earlier batch
// hit the provider quota.
var ErrSkipped = errors.New("analysis skipped after quota exhaustion")

//go:embed prompt.md
var promptTemplate string

type assessmentPayload struct {
	CandidateID           string   `json:"candidateId" jsonschema:"minLength=1"`
	AIScore               float64  `json:"aiScore" jsonschema:"minimum=0,maximum=100"`
	SkillsMatched         []string `json:"skillsMatched"`
	SkillsMissing         []string `json:"skillsMissing"`
	SkillsPartial         []string `json:"skillsPartial"`
	Strengths             []string `json:"strengths" jsonschema:"minItems=1"`
	FitConcerns           []string `json:"fitConcerns"`
	InterviewQuestions    []string `json:"interviewQuestions" jsonschema:"minItems=1"`
	Explanation           string   `json:"explanation" jsonschema:"minLength=1"`
	OverqualificationRisk string   `json:"overqualificationRisk" jsonschema:"enum=low,enum=medium,enum=high"`
	CareerTrajectoryFit   string   `json:"careerTrajectoryFit" jsonschema:"enum=strong,enum=moderate,enum=weak"`
	SalaryExpectationFit  string   `json:"salaryExpectationFit" jsonschema:"enum=aligned,enum=uncertain,enum=misaligned"`
}

type envelopePayload struct {
	Assessments []assessmentPayload `json:"assessments"`
}

var (
	assessmentSchema = schemas.MustCompile("candidate assessment", &assessmentPayload{})
	envelopeSchema   = schemas.MustCompile("assessment batch", &envelopePayload{})
)

// Config tunes batching and logging. BatchSize and Concurrency are throughput
// knobs, not correctness ones.
type Config struct {
	BatchSize   int `mapstructure:"batch-size" validate:"gte=1"`
	Concurrency int `mapstructure:"concurrency" validate:"gte=1"`
	// MaxLogLength truncates response previews in debug logs.
	MaxLogLength int `mapstructure:"max-log-length" validate:"gte=0"`
}

// Failure records a candidate that produced no assessment.
type Failure struct {
	CandidateID string
	Batch       int
	Err         error
}

// Result holds the assessments that completed and the candidates that did
// not.
type Result struct {
	Assessments map[string]matching.DeepAssessment
	Failures    []Failure
}

// Analyzer batches candidates into model calls.
type Analyzer struct {
	generator   ai.Generator
	batchSize   int
	concurrency int
	maxLogLen   int
	logger      *zap.Logger
}

// NewAnalyzer creates an Analyzer. Non-positive config values use the
// defaults.
func NewAnalyzer(generator ai.Generator, cfg Config, log *zap.Logger) *Analyzer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = DefaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Analyzer{
		generator:   generator,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		maxLogLen:   cfg.MaxLogLength,
		logger:      log,
	}
}

// WithLogger returns a copy of a that logs to log.
func (a *Analyzer) WithLogger(log *zap.Logger) *Analyzer {
	clone := *a
	if log != nil {
		clone.logger = log
	}
	return &clone
}

// Analyze assesses every candidate it is given. Failures are per batch or
// per candidate and never abort the others; when ctx ends, whatever has
// completed is returned.
func (a *Analyzer) Analyze(ctx context.Context, req matching.ParsedJobRequirement, candidates []matching.CandidateProfile, weights matching.MatchWeights) Result {
	result := Result{Assessments: make(map[string]matching.DeepAssessment, len(candidates))}
	if len(candidates) == 0 {
		return result
	}

	scorer := screening.NewScorer(req, weights)
	batches := chunk(candidates, a.batchSize)

	var (
		mu       sync.Mutex
		quotaHit atomic.Bool
		group    errgroup.Group
	)
	reqJSON, weightsJSON := toJSON(req), toJSON(weights)
	group.SetLimit(a.concurrency)

	record := func(assessments []matching.DeepAssessment, failures []Failure) {
		mu.Lock()
		defer mu.Unlock()
		for _, assessment := range assessments {
			result.Assessments[assessment.CandidateID] = assessment
		}
		result.Failures = append(result.Failures, failures...)
	}

	for i, batch := range batches {
		group.Go(func() error {
			log := a.logger.With(logger.Batch(i), zap.Int("batch_size", len(batch)))

			if quotaHit.Load() {
				record(nil, failAll(batch, i, ErrSkipped))
				log.Warn("deep analysis batch skipped", zap.Error(ErrSkipped))
				return nil
			}
			if err := ctx.Err(); err != nil {
				record(nil, failAll(batch, i, err))
				log.Warn("deep analysis batch not started", zap.Error(err))
				return nil
			}

			started := time.Now()
			assessments, failures, err := a.analyzeBatch(ctx, i, reqJSON, weightsJSON, batch, scorer, log)
			if err != nil {
				if errors.Is(err, ai.ErrQuotaExceeded) {
					quotaHit.Store(true)
				}
				log.Error("deep analysis batch failed", zap.Error(err), zap.Duration("duration", time.Since(started)))
				record(nil, failAll(batch, i, err))
				return nil
			}

			log.Info("deep analysis batch finished",
				zap.Int("assessed", len(assessments)),
				zap.Int("failed", len(failures)),
				zap.Duration("duration", time.Since(started)),
			)
			record(assessments, failures)
			return nil
		})
	}

	_ = group.Wait()

	sort.SliceStable(result.Failures, func(i, j int) bool {
		return result.Failures[i].Batch < result.Failures[j].Batch
	})
	return result
}

func (a *Analyzer) analyzeBatch(
	ctx context.Context,
	index int,
	reqJSON, weightsJSON string,
	batch []matching.CandidateProfile,
	scorer *screening.Scorer,
	log *zap.Logger,
) ([]matching.DeepAssessment, []Failure, error) {
	if a.generator == nil {
		return nil, nil, errors.New("no model configured")
	}

	message, err := buildMessage(reqJSON, weightsJSON, batch, scorer)
	if err != nil {
		return nil, nil, err
	}

	raw, err := a.generator.GenerateContent(ctx, systemPrompt(), message)
	if err != nil {
		return nil, nil, err
	}

	log.Debug("deep analysis response", zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)))

	items, err := envelopeItems(raw)
	if err != nil {
		return nil, nil, err
	}

	wanted := make(map[string]struct{}, len(batch))
	for _, c := range batch {
		wanted[c.ID] = struct{}{}
	}

	var (
		assessments []matching.DeepAssessment
		failures    []Failure
		seen        = make(map[string]struct{}, len(batch))
	)

	for pos, item := range items {
		var payload assessmentPayload
		if err := assessmentSchema.DecodeValue(item, &payload); err != nil {
			log.Warn("discarding invalid assessment", zap.Int("position", pos), zap.Error(err))
			continue
		}

		id := strings.TrimSpace(payload.CandidateID)
		if _, ok := wanted[id]; !ok {
			log.Warn("discarding assessment for unknown candidate", logger.Candidate(id))
			continue
		}
		if _, dup := seen[id]; dup {
			log.Warn("discarding duplicate assessment", logger.Candidate(id))
			continue
		}
		seen[id] = struct{}{}
		assessments = append(assessments, toAssessment(id, payload))
	}

	for _, c := range batch {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		err := fmt.Errorf("no valid assessment returned for candidate %q", c.ID)
		log.Warn("candidate not assessed", logger.Candidate(c.ID), zap.Error(err))
		failures = append(failures, Failure{CandidateID: c.ID, Batch: index, Err: err})
	}

	return assessments, failures, nil
}

func envelopeItems(raw string) ([]any, error) {
	value, err := schemas.Parse(raw)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case map[string]any:
		items, ok := v["assessments"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: response has no assessments array", schemas.ErrMalformed)
		}
		return items, nil
	case []any:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unexpected response shape %T", schemas.ErrMalformed, value)
	}
}

type candidateBrief struct {
	ID                string   `json:"candidateId"`
	CurrentTitle      string   `json:"currentTitle,omitempty"`
	Skills            string   `json:"skills"`
	YearsExperience   *float64 `json:"yearsExperience,omitempty"`
	SeniorityLevel    string   `json:"seniorityLevel,omitempty"`
	Location          string   `json:"location,omitempty"`
	Sector            string   `json:"sector,omitempty"`
	SalaryExpectation string   `json:"salaryExpectation,omitempty"`
	Summary           string   `json:"summary,omitempty"`
	SkillsMatched     []string `json:"mechanicalSkillsMatched"`
	SkillsPartial     []string `json:"mechanicalSkillsPartial"`
	SkillsMissing     []string `json:"mechanicalSkillsMissing"`
	PreScreeningScore float64  `json:"preScreeningScore"`
}

func buildMessage(reqJSON, weightsJSON string, batch []matching.CandidateProfile, scorer *screening.Scorer) (string, error) {
	briefs := make([]candidateBrief, 0, len(batch))
	for _, c := range batch {
		evaluated := scorer.Evaluate(c)
		briefs = append(briefs, candidateBrief{
			ID:                c.ID,
			CurrentTitle:      c.CurrentTitle,
			Skills:            c.SkillsRaw,
			YearsExperience:   c.YearsExperience,
			SeniorityLevel:    c.SeniorityLevel,
			Location:          c.Location,
			Sector:            c.Sector,
			SalaryExpectation: c.SalaryExpectation,
			Summary:           c.Summary,
			SkillsMatched:     append(evaluated.Skills.Matched, evaluated.Skills.Preferred.Matched...),
			SkillsPartial:     append(evaluated.Skills.Partial, evaluated.Skills.Preferred.Partial...),
			SkillsMissing:     append(evaluated.Skills.Missing, evaluated.Skills.Preferred.Missing...),
			PreScreeningScore: evaluated.Score.CompositeScore,
		})
	}

	candidatesJSON, err := json.MarshalIndent(briefs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Role requirements:\n")
	sb.WriteString(reqJSON)
	sb.WriteString("\n\nScoring weights used for pre-screening:\n")
	sb.WriteString(weightsJSON)
	sb.WriteString("\n\nCandidates:\n")
	sb.Write(candidatesJSON)
	sb.WriteString("\n\nJSON Response:")
	return sb.String(), nil
}

func systemPrompt() string {
	return strings.ReplaceAll(promptTemplate, "{{SCHEMA}}", envelopeSchema.String())
}

func toAssessment(id string, p assessmentPayload) matching.DeepAssessment {
	return matching.DeepAssessment{
		CandidateID:           id,
		AIScore:               p.AIScore,
		SkillsMatched:         nonNil(p.SkillsMatched),
		SkillsMissing:         nonNil(p.SkillsMissing),
		SkillsPartial:         nonNil(p.SkillsPartial),
		Strengths:             nonNil(p.Strengths),
		FitConcerns:           nonNil(p.FitConcerns),
		InterviewQuestions:    nonNil(p.InterviewQuestions),
		Explanation:           strings.TrimSpace(p.Explanation),
		OverqualificationRisk: matching.RiskLevel(p.OverqualificationRisk),
		CareerTrajectoryFit:   matching.TrajectoryFit(p.CareerTrajectoryFit),
		SalaryExpectationFit:  matching.SalaryFit(p.SalaryExpectationFit),
	}
}

func chunk(candidates []matching.CandidateProfile, size int) [][]matching.CandidateProfile {
	batches := make([][]matching.CandidateProfile, 0, (len(candidates)+size-1)/size)
	for start := 0; start < len(candidates); start += size {
		end := min(start+size, len(candidates))
		batches = append(batches, candidates[start:end])
	}
	return batches
}

func failAll(batch []matching.CandidateProfile, index int, err error) []Failure {
	failures := make([]Failure, 0, len(batch))
	for _, c := range batch {
		failures = append(failures, Failure{CandidateID: c.ID, Batch: index, Err: err})
	}
	return failures
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func toJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
