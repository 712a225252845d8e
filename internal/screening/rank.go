package screening

import (
	"sort"

	"github.com/spigell/cv-matcher/internal/matching"
)

// Ranked is a scored candidate with its position in the input pool.
type Ranked struct {
	Index      int
	Candidate  matching.CandidateProfile
	Assessment Assessment
}

// Rank scores every candidate and orders them by composite score, then prior
// score (missing last), then input order. Identical inputs always give an
// identical order.
func Rank(pool []matching.CandidateProfile, req matching.ParsedJobRequirement, weights matching.MatchWeights) []Ranked {
	scorer := NewScorer(req, weights)

	ranked := make([]Ranked, len(pool))
	for i, candidate := range pool {
		ranked[i] = Ranked{
			Index:      i,
			Candidate:  candidate,
			Assessment: scorer.Evaluate(candidate),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	return ranked
}

func less(a, b Ranked) bool {
	if sa, sb := a.Assessment.Score.CompositeScore, b.Assessment.Score.CompositeScore; sa != sb {
		return sa > sb
	}

	pa, pb := a.Candidate.PriorScore, b.Candidate.PriorScore
	switch {
	case pa != nil && pb == nil:
		return true
	case pa == nil && pb != nil:
		return false
	case pa != nil && pb != nil && *pa != *pb:
		return *pa > *pb
	}

	return a.Index < b.Index
}

// Top returns at most n entries from the head of ranked.
func Top(ranked []Ranked, n int) []Ranked {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
