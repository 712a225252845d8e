// Package screening implements the cheap deterministic first pass that
// scores every candidate in the pool without any network calls.
package screening

import (
	"github.com/spigell/cv-matcher/internal/location"
	"github.com/spigell/cv-matcher/internal/matching"
	"github.com/spigell/cv-matcher/internal/taxonomy"
)

const (
	// NiceToHaveFactor scales nice-to-have coverage relative to must-haves.
	NiceToHaveFactor = 0.3
	// PartialCredit is the fraction of a match a partial skill counts for.
	PartialCredit = 0.5
	// ExperienceFloor is the lowest experience score a known candidate gets.
	ExperienceFloor = 20

	experiencePenaltyBelow = 15
	experiencePenaltyAbove = 10
	neutralScore           = 50
	fullScore              = 100
)

var seniorityDistanceScores = []float64{100, 70, 30}

// Assessment is a PreScreeningScore together with the details it was
// derived from.
type Assessment struct {
	Score     matching.PreScreeningScore `json:"score"`
	Skills    taxonomy.SkillMatchResult  `json:"skills"`
	Location  location.Match             `json:"location"`
	Seniority matching.Seniority         `json:"seniority,omitempty"`
}

// Scorer scores candidates against one requirement. It is immutable once
// built and safe for concurrent use.
type Scorer struct {
	requirement matching.ParsedJobRequirement
	weights     matching.MatchWeights
	required    taxonomy.Set
	preferred   taxonomy.Set
}

// NewScorer prepares a Scorer for req.
func NewScorer(req matching.ParsedJobRequirement, weights matching.MatchWeights) *Scorer {
	return &Scorer{
		requirement: req,
		weights:     weights,
		required:    taxonomy.NewSet(req.MustHaveSkills...),
		preferred:   taxonomy.NewSet(req.NiceToHaveSkills...),
	}
}

// Score is the one-shot form of NewScorer(req, weights).Evaluate(c).Score.
func Score(c matching.CandidateProfile, req matching.ParsedJobRequirement, weights matching.MatchWeights) matching.PreScreeningScore {
	return NewScorer(req, weights).Evaluate(c).Score
}

// Evaluate scores a single candidate.
func (s *Scorer) Evaluate(c matching.CandidateProfile) Assessment {
	skills := taxonomy.MatchSkillSets(taxonomy.Normalize(c.SkillsRaw), s.required, s.preferred)
	loc := location.MatchLocation(c.Location, s.requirement.Location)
	level := candidateSeniority(c)

	score := matching.PreScreeningScore{
		CandidateID:     c.ID,
		SkillsScore:     SkillsScore(skills, len(s.required), len(s.preferred)),
		LocationScore:   loc.Score,
		ExperienceScore: ExperienceScore(c.YearsExperience, s.requirement.MinExperienceYears, s.requirement.MaxExperienceYears),
		SeniorityScore:  SeniorityScore(level, s.requirement.Seniority),
	}
	score.CompositeScore = matching.Clamp(
		s.weights.Skills*score.SkillsScore+
			s.weights.Experience*score.ExperienceScore+
			s.weights.Location*score.LocationScore+
			s.weights.Seniority*score.SeniorityScore,
		0, fullScore,
	)

	return Assessment{
		Score:     score,
		Skills:    skills,
		Location:  loc,
		Seniority: level,
	}
}

// SkillsScore gives must-have coverage full weight and adds nice-to-have
// coverage at NiceToHaveFactor, capped at 100. Partial skills earn
// PartialCredit.
func SkillsScore(r taxonomy.SkillMatchResult, required, preferred int) float64 {
	must := 1.0
	if required > 0 {
		must = (float64(len(r.Matched)) + PartialCredit*float64(len(r.Partial))) / float64(required)
	}

	var nice float64
	if preferred > 0 {
		nice = (float64(len(r.Preferred.Matched)) + PartialCredit*float64(len(r.Preferred.Partial))) / float64(preferred)
	}

	return matching.Clamp(must*fullScore+NiceToHaveFactor*nice*fullScore, 0, fullScore)
}

// ExperienceScore is 100 inside [min,max] and decays linearly outside it
// down to ExperienceFloor. Unknown experience is neutral.
func ExperienceScore(years, minYears, maxYears *float64) float64 {
	if years == nil {
		return neutralScore
	}

	y := *years
	switch {
	case minYears != nil && y < *minYears:
		return max(ExperienceFloor, fullScore-experiencePenaltyBelow*(*minYears-y))
	case maxYears != nil && y > *maxYears:
		return max(ExperienceFloor, fullScore-experiencePenaltyAbove*(y-*maxYears))
	default:
		return fullScore
	}
}

// SeniorityScore compares ladder positions: equal 100, one apart 70,
// further 30. A requirement without seniority cannot be failed; an unknown
// candidate level is neutral.
func SeniorityScore(candidate, required matching.Seniority) float64 {
	if !required.Valid() {
		return fullScore
	}
	if !candidate.Valid() {
		return neutralScore
	}

	distance := candidate.Rank() - required.Rank()
	if distance < 0 {
		distance = -distance
	}
	if distance >= len(seniorityDistanceScores) {
		distance = len(seniorityDistanceScores) - 1
	}
	return seniorityDistanceScores[distance]
}

// candidateSeniority reads the stated level, falling back to one inferred
// from years of experience.
func candidateSeniority(c matching.CandidateProfile) matching.Seniority {
	if level, ok := matching.ParseSeniority(c.SeniorityLevel); ok {
		return level
	}
	if c.YearsExperience != nil {
		return matching.SeniorityForYears(*c.YearsExperience)
	}
	return matching.SeniorityUnknown
}
