package location

import (
	"testing"

	"github.com/spigell/cv-matcher/internal/matching"
)

func TestMatchLocation(t *testing.T) {
	onsiteLondon := matching.LocationRequirement{Raw: "London", Mode: matching.LocationOnsite}
	hybridLondon := matching.LocationRequirement{Raw: "London, UK", Mode: matching.LocationHybrid}

	tests := []struct {
		name       string
		candidate  string
		job        matching.LocationRequirement
		score      float64
		compatible bool
		kind       Kind
	}{
		{
			name:      "remote job accepts anyone",
			candidate: "Glasgow",
			job:       matching.LocationRequirement{Raw: "Remote (UK)", Mode: matching.LocationRemote},
			score:     100, compatible: true, kind: KindRemote,
		},
		{name: "exact string", candidate: "london", job: onsiteLondon, score: 100, compatible: true, kind: KindExact},
		{name: "same city different spelling", candidate: "London, United Kingdom", job: hybridLondon, score: 100, compatible: true, kind: KindExact},
		{name: "city inside required region", candidate: "Reading", job: matching.LocationRequirement{Raw: "South East"}, score: 100, compatible: true, kind: KindExact},
		{name: "same region", candidate: "Croydon", job: onsiteLondon, score: 90, compatible: true, kind: KindSameRegion},
		{name: "adjacent region", candidate: "Reading", job: onsiteLondon, score: 75, compatible: true, kind: KindAdjacent},
		{name: "two regions away", candidate: "Bristol", job: onsiteLondon, score: 60, compatible: true, kind: KindCommutable},
		{name: "unknown candidate", candidate: "", job: onsiteLondon, score: 50, compatible: true, kind: KindUnknown},
		{name: "unconstrained job", candidate: "Leeds", job: matching.LocationRequirement{}, score: 100, compatible: true, kind: KindUnconstrained},
		{name: "mode-only hybrid job", candidate: "London", job: matching.LocationRequirement{Raw: "Hybrid", Mode: matching.LocationHybrid}, score: 100, compatible: true, kind: KindUnconstrained},
		{name: "mode-only office job", candidate: "Leeds", job: matching.LocationRequirement{Raw: "Office based (on-site)", Mode: matching.LocationOnsite}, score: 100, compatible: true, kind: KindUnconstrained},
		{name: "on-site far away", candidate: "Edinburgh", job: onsiteLondon, score: 10, compatible: false, kind: KindIncompatible},
		{name: "hybrid far away", candidate: "Edinburgh", job: hybridLondon, score: 20, compatible: true, kind: KindMismatch},
		{name: "unrecognised place", candidate: "Springfield", job: onsiteLondon, score: 20, compatible: true, kind: KindMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchLocation(tt.candidate, tt.job)
			if got.Score != tt.score || got.Compatible != tt.compatible || got.Kind != tt.kind {
				t.Fatalf("MatchLocation(%q) = %+v, want score=%v compatible=%v kind=%s", tt.candidate, got, tt.score, tt.compatible, tt.kind)
			}
			if got.Reason == "" {
				t.Fatal("expected a reason")
			}
		})
	}
}

func TestMatchLocationNeverZeroForMissingLocation(t *testing.T) {
	modes := []matching.LocationMode{
		matching.LocationOnsite,
		matching.LocationHybrid,
		matching.LocationUnspecified,
	}

	for _, mode := range modes {
		for _, raw := range []string{"London", "Manchester", "", "Paris"} {
			got := MatchLocation("   ", matching.LocationRequirement{Raw: raw, Mode: mode})
			if got.Score != ScoreUnknown || !got.Compatible {
				t.Fatalf("missing location against %q/%s scored %+v", raw, mode, got)
			}
		}
	}
}

func TestModeOnlyJobDoesNotFavourMissingLocation(t *testing.T) {
	job := matching.LocationRequirement{Raw: "Hybrid", Mode: matching.LocationHybrid}

	local := MatchLocation("London", job)
	unknown := MatchLocation("", job)
	if local.Score <= unknown.Score {
		t.Fatalf("known location scored %v, missing location %v", local.Score, unknown.Score)
	}
}

func TestRegionHops(t *testing.T) {
	if got := regionHops("london", "london", 2); got != 0 {
		t.Fatalf("expected 0 hops, got %d", got)
	}
	if got := regionHops("london", "south west", 2); got != 2 {
		t.Fatalf("expected 2 hops, got %d", got)
	}
	if got := regionHops("london", "scotland", 2); got != -1 {
		t.Fatalf("expected out of range, got %d", got)
	}
}
