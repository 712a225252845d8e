package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/cv-matcher/internal/analysis"
	"github.com/spigell/cv-matcher/internal/matching"
	"github.com/spigell/cv-matcher/internal/requirements"
)

const (
	DefaultAnalysisBudgetCap = 50
	DefaultAnalysisTimeout   = 2 * time.Minute
)

// Config gathers every tunable of a run in one place.
type Config struct {
	Weights matching.MatchWeights `mapstructure:"weights"`
	Blend   matching.Blend        `mapstructure:"blend"`
	// AnalysisBudgetCap bounds how many candidates reach deep analysis no
	// matter how many results the caller asks for.
	AnalysisBudgetCap int `mapstructure:"analysis-budget-cap" validate:"gte=1"`
	BatchSize         int `mapstructure:"batch-size" validate:"gte=1"`
	Concurrency       int `mapstructure:"concurrency" validate:"gte=1"`
	// AnalysisTimeout bounds the deep-analysis stage; zero means only the
	// caller's context applies.
	AnalysisTimeout      time.Duration `mapstructure:"analysis-timeout" validate:"gte=0"`
	MinDescriptionLength int           `mapstructure:"min-description-length" validate:"gte=1"`
	// MaxLogLength truncates prompts and model responses in debug logs.
	MaxLogLength int `mapstructure:"max-log-length" validate:"gte=1"`
}

// DefaultConfig is the documented default configuration.
func DefaultConfig() Config {
	return Config{
		Weights:              matching.DefaultWeights(),
		Blend:                matching.DefaultBlend(),
		AnalysisBudgetCap:    DefaultAnalysisBudgetCap,
		BatchSize:            analysis.DefaultBatchSize,
		Concurrency:          analysis.DefaultConcurrency,
		AnalysisTimeout:      DefaultAnalysisTimeout,
		MinDescriptionLength: requirements.DefaultMinLength,
		MaxLogLength:         requirements.DefaultMaxLogLength,
	}
}

var validate = validator.New()

// Validate checks ranges and reports the first problem as *ValidationError.
func (c Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if c.Blend.Algorithmic+c.Blend.AI <= 0 {
		return &ValidationError{Field: "blend", Message: "at least one blend weight must be positive"}
	}
	return nil
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must satisfy %s=%s, got %v", fe.Tag(), fe.Param(), fe.Value()),
	}
}
