package filtering

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/matching"
)

// toggle carries the enable state shared by every step.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

// keep returns the candidates accepted by fn and the ids of the rest.
func keep(pool []matching.CandidateProfile, fn func(matching.CandidateProfile) bool) ([]matching.CandidateProfile, []string) {
	kept := make([]matching.CandidateProfile, 0, len(pool))
	var dropped []string
	for _, c := range pool {
		if fn(c) {
			kept = append(kept, c)
			continue
		}
		dropped = append(dropped, c.ID)
	}
	return kept, dropped
}

func debugDropped(deps Deps, msg string, dropped []string, left int) {
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug(msg,
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", left),
		)
	}
}

type locationFilter struct {
	toggle
	location string
}

// NewLocation creates a filter that keeps candidates located in the
// configured place. Candidates without a location are kept.
func NewLocation() Filter {
	return &locationFilter{}
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Validate(cfg *Config) error {
	f.location = ""
	if cfg != nil {
		f.location = strings.ToLower(strings.TrimSpace(cfg.Location))
	}
	return nil
}

func (f *locationFilter) Apply(_ context.Context, deps Deps, pool []matching.CandidateProfile) ([]matching.CandidateProfile, Step, error) {
	initial := len(pool)
	if f.location == "" {
		return pool, Step{Initial: initial, Left: initial}, nil
	}

	kept, dropped := keep(pool, func(c matching.CandidateProfile) bool {
		loc := strings.ToLower(strings.TrimSpace(c.Location))
		return loc == "" || strings.Contains(loc, f.location)
	})
	debugDropped(deps, "excluding candidates by location", dropped, len(kept))

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *locationFilter) Status() Status {
	details := map[string]string{}
	if f.location != "" {
		details["location"] = f.location
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type sectorFilter struct {
	toggle
	sector string
}

// NewSector creates a filter that keeps candidates from the configured
// sector.
func NewSector() Filter {
	return &sectorFilter{}
}

func (f *sectorFilter) Name() string { return "sector" }

func (f *sectorFilter) Validate(cfg *Config) error {
	f.sector = ""
	if cfg != nil {
		f.sector = strings.TrimSpace(cfg.Sector)
	}
	return nil
}

func (f *sectorFilter) Apply(_ context.Context, deps Deps, pool []matching.CandidateProfile) ([]matching.CandidateProfile, Step, error) {
	initial := len(pool)
	if f.sector == "" {
		return pool, Step{Initial: initial, Left: initial}, nil
	}

	kept, dropped := keep(pool, func(c matching.CandidateProfile) bool {
		return strings.EqualFold(strings.TrimSpace(c.Sector), f.sector)
	})
	debugDropped(deps, "excluding candidates by sector", dropped, len(kept))

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *sectorFilter) Status() Status {
	details := map[string]string{}
	if f.sector != "" {
		details["sector"] = f.sector
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type minExperienceFilter struct {
	toggle
	years *float64
}

// NewMinExperience creates a filter that drops candidates with fewer years
// than configured. Unknown experience is kept.
func NewMinExperience() Filter {
	return &minExperienceFilter{}
}

func (f *minExperienceFilter) Name() string { return "min_experience" }

func (f *minExperienceFilter) Validate(cfg *Config) error {
	f.years = nil
	if cfg != nil {
		f.years = cfg.MinExperience
	}
	return nil
}

func (f *minExperienceFilter) Apply(_ context.Context, deps Deps, pool []matching.CandidateProfile) ([]matching.CandidateProfile, Step, error) {
	initial := len(pool)
	if f.years == nil {
		return pool, Step{Initial: initial, Left: initial}, nil
	}

	kept, dropped := keep(pool, func(c matching.CandidateProfile) bool {
		return c.YearsExperience == nil || *c.YearsExperience >= *f.years
	})
	debugDropped(deps, "excluding candidates by experience", dropped, len(kept))

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *minExperienceFilter) Status() Status {
	details := map[string]string{}
	if f.years != nil {
		details["min_experience"] = strconv.FormatFloat(*f.years, 'f', -1, 64)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type poolCapFilter struct {
	toggle
	limit int
}

// NewPoolCap creates a filter that truncates the pool to the configured cap,
// keeping source order.
func NewPoolCap() Filter {
	return &poolCapFilter{}
}

func (f *poolCapFilter) Name() string { return "pool_cap" }

func (f *poolCapFilter) Validate(cfg *Config) error {
	f.limit = cfg.Cap()
	return nil
}

func (f *poolCapFilter) Apply(_ context.Context, deps Deps, pool []matching.CandidateProfile) ([]matching.CandidateProfile, Step, error) {
	initial := len(pool)
	if initial <= f.limit {
		return pool, Step{Initial: initial, Left: initial}, nil
	}

	if deps.Logger != nil {
		deps.Logger.Warn("candidate pool truncated",
			zap.Int("pool_size", initial),
			zap.Int("pool_cap", f.limit),
		)
	}

	return pool[:f.limit], Step{Initial: initial, Dropped: initial - f.limit, Left: f.limit}, nil
}

func (f *poolCapFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"pool_cap": strconv.Itoa(f.limit)},
	}
}
