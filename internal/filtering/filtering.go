// Package filtering narrows a candidate pool before it reaches the pipeline.
// The steps mirror the query-side filters of the candidate store so that a
// file-backed pool behaves like the database one.
package filtering

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/matching"
)

// DefaultPoolCap is the hard limit on the size of a pool handed to the
// pipeline.
const DefaultPoolCap = 200

// Filter represents a single filtering step applied to the candidate pool.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, pool []matching.CandidateProfile) ([]matching.CandidateProfile, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains the query-side filter settings.
type Config struct {
	// Location keeps candidates whose location contains this text
	// (case-insensitive). Candidates without a location are kept.
	Location string `mapstructure:"location"`
	// Sector keeps candidates whose sector equals this value ignoring case.
	Sector string `mapstructure:"sector"`
	// MinExperience keeps candidates with at least this many years.
	// Candidates with unknown experience are kept.
	MinExperience *float64 `mapstructure:"min-experience" validate:"omitempty,gte=0"`
	PoolCap       int      `mapstructure:"pool-cap" validate:"gte=0"`
	// Disabled names filters to skip. The pool cap cannot be disabled.
	Disabled []string `mapstructure:"disabled" validate:"dive,oneof=location sector min_experience"`
}

// DefaultConfig returns a Config that only applies the pool cap.
func DefaultConfig() Config {
	return Config{PoolCap: DefaultPoolCap}
}

var validate = validator.New()

// Validate checks the configured ranges.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("filter %s must satisfy %s=%s", verrs[0].Field(), verrs[0].Tag(), verrs[0].Param())
		}
		return err
	}
	return nil
}

// Enabled reports whether the named filter is not listed in Disabled.
func (c *Config) Enabled(name string) bool {
	if c == nil {
		return true
	}
	for _, disabled := range c.Disabled {
		if disabled == name {
			return false
		}
	}
	return true
}

// Cap returns the effective pool cap.
func (c *Config) Cap() int {
	if c == nil || c.PoolCap <= 0 {
		return DefaultPoolCap
	}
	return c.PoolCap
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns the standard step order: the narrowing filters first and
// the cap last, so the cap counts only candidates that passed.
func Default() []Filter {
	return []Filter{
		NewLocation(),
		NewSector(),
		NewMinExperience(),
		NewPoolCap(),
	}
}

// Steps returns the default steps with every filter listed in cfg.Disabled
// switched off.
func Steps(cfg *Config) []Filter {
	steps := Default()
	if cfg != nil {
		for _, name := range cfg.Disabled {
			DisableByName(steps, name, "disabled in configuration")
		}
	}
	return steps
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates cfg, then executes the enabled filters sequentially.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, pool []matching.CandidateProfile) ([]matching.CandidateProfile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			log.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, info, err := step.Apply(ctx, deps, pool)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		log.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		pool = next
	}

	return pool, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
