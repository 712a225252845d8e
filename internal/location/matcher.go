// Package location scores how well a candidate's stated location suits a
// job's location requirement. Missing information only ever lowers a score;
// it never rejects.
package location

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/spigell/cv-matcher/internal/matching"
)

// Kind names the rule that produced a Match.
type Kind string

const (
	KindRemote        Kind = "remote"
	KindExact         Kind = "exact"
	KindSameRegion    Kind = "same_region"
	KindAdjacent      Kind = "adjacent_region"
	KindCommutable    Kind = "commutable"
	KindUnknown       Kind = "unknown"
	KindUnconstrained Kind = "unconstrained"
	KindMismatch      Kind = "mismatch"
	KindIncompatible  Kind = "incompatible"
)

const (
	ScoreExact        = 100
	ScoreSameRegion   = 90
	ScoreAdjacent     = 75
	ScoreCommutable   = 60
	ScoreUnknown      = 50
	ScoreMismatch     = 20
	ScoreIncompatible = 10
)

// commutableHops is the furthest region distance still considered commutable.
const commutableHops = 2

// Match is the outcome of comparing one candidate location with a job.
type Match struct {
	Compatible bool    `json:"compatible"`
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
	Kind       Kind    `json:"kind"`
}

type place struct {
	city   string
	region string
}

func (p place) known() bool {
	return p.region != ""
}

// MatchLocation applies the rules in priority order: remote job, exact
// match, region proximity, unknown candidate, unconstrained job, mismatch.
func MatchLocation(candidate string, job matching.LocationRequirement) Match {
	if job.Remote() {
		return Match{Compatible: true, Score: ScoreExact, Kind: KindRemote, Reason: "remote role"}
	}

	candidateText := normalize(candidate)
	jobText := normalize(job.Raw)
	// "Hybrid" or "Office based" names no place to compare against.
	if jobText != "" && !resolve(jobText).known() && matching.ModeOnly(jobText) {
		jobText = ""
	}

	if candidateText == "" {
		return Match{Compatible: true, Score: ScoreUnknown, Kind: KindUnknown, Reason: "candidate location unknown"}
	}
	if jobText == "" {
		return Match{Compatible: true, Score: ScoreExact, Kind: KindUnconstrained, Reason: "job has no location constraint"}
	}

	if candidateText == jobText {
		return Match{Compatible: true, Score: ScoreExact, Kind: KindExact, Reason: "exact location match"}
	}

	have := resolve(candidateText)
	want := resolve(jobText)

	if have.known() && want.known() {
		switch {
		case want.city != "" && have.city == want.city:
			return Match{Compatible: true, Score: ScoreExact, Kind: KindExact, Reason: fmt.Sprintf("same city (%s)", want.city)}
		case want.city == "" && have.region == want.region:
			return Match{Compatible: true, Score: ScoreExact, Kind: KindExact, Reason: fmt.Sprintf("within required region (%s)", want.region)}
		case have.region == want.region:
			return Match{Compatible: true, Score: ScoreSameRegion, Kind: KindSameRegion, Reason: fmt.Sprintf("same region (%s)", want.region)}
		}

		switch regionHops(have.region, want.region, commutableHops) {
		case 1:
			return Match{
				Compatible: true,
				Score:      ScoreAdjacent,
				Kind:       KindAdjacent,
				Reason:     fmt.Sprintf("adjacent region (%s near %s)", have.region, want.region),
			}
		case 2:
			return Match{
				Compatible: true,
				Score:      ScoreCommutable,
				Kind:       KindCommutable,
				Reason:     fmt.Sprintf("commutable region (%s to %s)", have.region, want.region),
			}
		}

		if job.Mode == matching.LocationOnsite {
			return Match{
				Compatible: false,
				Score:      ScoreIncompatible,
				Kind:       KindIncompatible,
				Reason:     fmt.Sprintf("on-site role in %s, candidate in %s", want.region, have.region),
			}
		}
	}

	return Match{Compatible: true, Score: ScoreMismatch, Kind: KindMismatch, Reason: "location does not match"}
}

// resolve finds the longest known city or region name in text.
func resolve(text string) place {
	words := strings.Fields(text)
	for n := min(3, len(words)); n >= 1; n-- {
		for i := 0; i+n <= len(words); i++ {
			gram := strings.Join(words[i:i+n], " ")
			if region, ok := cityRegions[gram]; ok {
				return place{city: gram, region: region}
			}
			if _, ok := regionAdjacency[gram]; ok {
				return place{region: gram}
			}
		}
	}
	return place{}
}

// normalize lower-cases text, drops punctuation and collapses whitespace.
func normalize(text string) string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Join(strings.Fields(text), " ")
}
