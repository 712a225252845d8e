package matching

// ParsedJobRequirement is the structured form of a job description. It is
// built once per run and must not be modified afterwards; the skill slices
// are sorted canonical labels.
type ParsedJobRequirement struct {
	Title              string              `json:"title"`
	MustHaveSkills     []string            `json:"mustHaveSkills"`
	NiceToHaveSkills   []string            `json:"niceToHaveSkills"`
	MinExperienceYears *float64            `json:"minExperienceYears"`
	MaxExperienceYears *float64            `json:"maxExperienceYears"`
	Seniority          Seniority           `json:"seniority,omitempty"`
	Location           LocationRequirement `json:"location"`
	Sector             string              `json:"sector,omitempty"`
}

// CandidateProfile is a read-only snapshot of a candidate. ID and Name are
// carried through to the result and never scored.
type CandidateProfile struct {
	ID                string   `json:"id" db:"id"`
	Name              string   `json:"name" db:"name"`
	SkillsRaw         string   `json:"skillsRaw" db:"skills_raw"`
	YearsExperience   *float64 `json:"yearsExperience" db:"years_experience"`
	SeniorityLevel    string   `json:"seniorityLevel,omitempty" db:"seniority_level"`
	Location          string   `json:"location,omitempty" db:"location"`
	Sector            string   `json:"sector,omitempty" db:"sector"`
	PriorScore        *float64 `json:"priorScore" db:"prior_score"`
	CurrentTitle      string   `json:"currentTitle,omitempty" db:"current_title"`
	Summary           string   `json:"summary,omitempty" db:"summary"`
	SalaryExpectation string   `json:"salaryExpectation,omitempty" db:"salary_expectation"`
}

// PreScreeningScore holds the stage-one sub-scores of one candidate, each in
// [0,100].
type PreScreeningScore struct {
	CandidateID     string  `json:"candidateId"`
	SkillsScore     float64 `json:"skillsScore"`
	LocationScore   float64 `json:"locationScore"`
	ExperienceScore float64 `json:"experienceScore"`
	SeniorityScore  float64 `json:"seniorityScore"`
	CompositeScore  float64 `json:"compositeScore"`
}

// RiskLevel grades overqualification risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// TrajectoryFit grades how well the role continues the candidate's career.
type TrajectoryFit string

const (
	TrajectoryStrong   TrajectoryFit = "strong"
	TrajectoryModerate TrajectoryFit = "moderate"
	TrajectoryWeak     TrajectoryFit = "weak"
)

// SalaryFit grades the candidate's salary expectation against the role.
type SalaryFit string

const (
	SalaryAligned    SalaryFit = "aligned"
	SalaryUncertain  SalaryFit = "uncertain"
	SalaryMisaligned SalaryFit = "misaligned"
)

// DeepAssessment is the model's view of one candidate.
type DeepAssessment struct {
	CandidateID           string        `json:"candidateId"`
	AIScore               float64       `json:"aiScore"`
	SkillsMatched         []string      `json:"skillsMatched"`
	SkillsMissing         []string      `json:"skillsMissing"`
	SkillsPartial         []string      `json:"skillsPartial"`
	Strengths             []string      `json:"strengths"`
	FitConcerns           []string      `json:"fitConcerns"`
	InterviewQuestions    []string      `json:"interviewQuestions"`
	Explanation           string        `json:"explanation"`
	OverqualificationRisk RiskLevel     `json:"overqualificationRisk"`
	CareerTrajectoryFit   TrajectoryFit `json:"careerTrajectoryFit"`
	SalaryExpectationFit  SalaryFit     `json:"salaryExpectationFit"`
}

// ScoreBasis records how a final score was derived.
type ScoreBasis string

// ScoreBasisBlend marks a final score computed with the configured Blend.
const ScoreBasisBlend ScoreBasis = "blend"

// EnrichedMatchResult is one entry of the final shortlist. Only candidates
// that were deep-analysed produce one.
type EnrichedMatchResult struct {
	CandidateID           string            `json:"candidateId"`
	CandidateName         string            `json:"candidateName,omitempty"`
	AlgorithmicScore      float64           `json:"algorithmicScore"`
	AIScore               *float64          `json:"aiScore"`
	FinalScore            float64           `json:"finalScore"`
	ScoreBasis            ScoreBasis        `json:"scoreBasis"`
	Blend                 Blend             `json:"blend"`
	PreScreening          PreScreeningScore `json:"preScreening"`
	SkillsMatched         []string          `json:"skillsMatched"`
	SkillsMissing         []string          `json:"skillsMissing"`
	SkillsPartial         []string          `json:"skillsPartial"`
	Strengths             []string          `json:"strengths"`
	FitConcerns           []string          `json:"fitConcerns"`
	InterviewQuestions    []string          `json:"interviewQuestions"`
	Explanation           string            `json:"explanation"`
	OverqualificationRisk RiskLevel         `json:"overqualificationRisk"`
	CareerTrajectoryFit   TrajectoryFit     `json:"careerTrajectoryFit"`
	SalaryExpectationFit  SalaryFit         `json:"salaryExpectationFit"`
}

// Stats describes a pipeline run.
type Stats struct {
	TotalCandidates  int   `json:"totalCandidates"`
	PreScreenedCount int   `json:"preScreenedCount"`
	AIAnalyzedCount  int   `json:"aiAnalyzedCount"`
	ProcessingTimeMs int64 `json:"processingTimeMs"`
	// RequestedAnalysisCount is how many candidates were sent to deep
	// analysis, min(maxResults, budget cap, pool size).
	RequestedAnalysisCount int              `json:"requestedAnalysisCount"`
	FailedAnalysisCount    int              `json:"failedAnalysisCount"`
	StageDurationsMs       map[string]int64 `json:"stageDurationsMs,omitempty"`
}

// Partial reports whether fewer candidates were analysed than requested.
func (s Stats) Partial() bool {
	return s.AIAnalyzedCount < s.RequestedAnalysisCount
}

// PipelineResult is everything a run returns.
type PipelineResult struct {
	Matches            []EnrichedMatchResult `json:"matches"`
	ParsedRequirements ParsedJobRequirement  `json:"parsedRequirements"`
	Stats              Stats                 `json:"stats"`
}
