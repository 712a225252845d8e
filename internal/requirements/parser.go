// Package requirements turns a free-text job description into a
// ParsedJobRequirement with a single model extraction call.
package requirements

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/matching"
	"github.com/spigell/cv-matcher/internal/schemas"
	"github.com/spigell/cv-matcher/internal/taxonomy"
	"github.com/spigell/cv-matcher/internal/utils"
)

// DefaultMinLength is the shortest job description worth extracting from.
const DefaultMinLength = 50

// DefaultMaxLogLength truncates response previews in debug logs.
const DefaultMaxLogLength = 200

//go:embed prompt.md
var promptTemplate string

type locationPayload struct {
	Raw  string `json:"raw" jsonschema_description:"Location text as written, empty when none"`
	Mode string `json:"mode" jsonschema:"enum=remote,enum=hybrid,enum=onsite,enum=unspecified"`
}

type requirementPayload struct {
	Title              string          `json:"title" jsonschema:"minLength=1" jsonschema_description:"Job title"`
	MustHaveSkills     []string        `json:"mustHaveSkills" jsonschema_description:"Required skills"`
	NiceToHaveSkills   []string        `json:"niceToHaveSkills" jsonschema_description:"Desirable skills"`
	MinExperienceYears *float64        `json:"minExperienceYears,omitempty" jsonschema:"minimum=0"`
	MaxExperienceYears *float64        `json:"maxExperienceYears,omitempty" jsonschema:"minimum=0"`
	Seniority          string          `json:"seniority,omitempty" jsonschema:"enum=entry,enum=junior,enum=mid,enum=senior,enum=lead,enum=manager,enum=director,enum=executive"`
	Location           locationPayload `json:"location"`
	Sector             string          `json:"sector,omitempty"`
}

var requirementSchema = schemas.MustCompile("job requirement", &requirementPayload{})

// Parser extracts requirements through an ai.Generator. It holds no state
// between calls.
type Parser struct {
	generator ai.Generator
	minLength int
	maxLogLen int
	logger    *zap.Logger
}

// NewParser creates a Parser. A non-positive minLength uses DefaultMinLength.
func NewParser(generator ai.Generator, minLength int, logger *zap.Logger) *Parser {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Parser{
		generator: generator,
		minLength: minLength,
		maxLogLen: DefaultMaxLogLength,
		logger:    logger,
	}
}

// WithLogger returns a copy of p that logs to log.
func (p *Parser) WithLogger(log *zap.Logger) *Parser {
	clone := *p
	if log != nil {
		clone.logger = log
	}
	return &clone
}

// WithMaxLogLength returns a copy of p that truncates logged responses to n
// runes. A non-positive n keeps the current limit.
func (p *Parser) WithMaxLogLength(n int) *Parser {
	clone := *p
	if n > 0 {
		clone.maxLogLen = n
	}
	return &clone
}

// Parse validates text and extracts its requirements. Short input fails with
// *matching.ValidationError before any model call; a failed or unusable
// extraction fails with *matching.ExtractionError.
func (p *Parser) Parse(ctx context.Context, text string) (matching.ParsedJobRequirement, error) {
	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < p.minLength {
		return matching.ParsedJobRequirement{}, &matching.ValidationError{
			Field:   "jobDescription",
			Message: fmt.Sprintf("must be at least %d characters, got %d", p.minLength, n),
		}
	}

	if p.generator == nil {
		return matching.ParsedJobRequirement{}, &matching.ExtractionError{Message: "no model configured"}
	}

	raw, err := p.generator.GenerateContent(ctx, systemPrompt(), buildMessage(text))
	if err != nil {
		return matching.ParsedJobRequirement{}, &matching.ExtractionError{Message: "model call failed", Cause: err}
	}

	p.logger.Debug("requirement extraction response",
		zap.String("response_preview", utils.TruncateForLog(raw, p.maxLogLen)),
	)

	var payload requirementPayload
	if err := requirementSchema.Decode(raw, &payload); err != nil {
		return matching.ParsedJobRequirement{}, &matching.ExtractionError{Message: "unusable model response", Cause: err}
	}

	req, err := toRequirement(payload)
	if err != nil {
		return matching.ParsedJobRequirement{}, &matching.ExtractionError{Message: "inconsistent model response", Cause: err}
	}

	p.logger.Info("job requirements extracted",
		zap.String("title", req.Title),
		zap.Int("must_have", len(req.MustHaveSkills)),
		zap.Int("nice_to_have", len(req.NiceToHaveSkills)),
		zap.String("seniority", string(req.Seniority)),
		zap.String("location_mode", string(req.Location.Mode)),
	)

	return req, nil
}

func systemPrompt() string {
	return strings.ReplaceAll(promptTemplate, "{{SCHEMA}}", requirementSchema.String())
}

func buildMessage(text string) string {
	return "Job description:\n" + text + "\n\nJSON Response:"
}

func toRequirement(payload requirementPayload) (matching.ParsedJobRequirement, error) {
	if payload.MinExperienceYears != nil && payload.MaxExperienceYears != nil &&
		*payload.MinExperienceYears > *payload.MaxExperienceYears {
		return matching.ParsedJobRequirement{}, fmt.Errorf("minExperienceYears %v exceeds maxExperienceYears %v",
			*payload.MinExperienceYears, *payload.MaxExperienceYears)
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return matching.ParsedJobRequirement{}, errors.New("title is empty")
	}

	must := taxonomy.NewSet(payload.MustHaveSkills...)
	nice := taxonomy.NewSet(payload.NiceToHaveSkills...)
	for skill := range must {
		delete(nice, skill)
	}

	seniority := matching.Seniority(strings.ToLower(strings.TrimSpace(payload.Seniority)))
	if !seniority.Valid() {
		seniority = matching.SeniorityUnknown
	}

	raw := strings.TrimSpace(payload.Location.Raw)
	mode := matching.ParseLocationMode(payload.Location.Mode)
	if mode == matching.LocationUnspecified {
		mode = matching.InferLocationMode(raw)
	}

	return matching.ParsedJobRequirement{
		Title:              title,
		MustHaveSkills:     must.Sorted(),
		NiceToHaveSkills:   nice.Sorted(),
		MinExperienceYears: payload.MinExperienceYears,
		MaxExperienceYears: payload.MaxExperienceYears,
		Seniority:          seniority,
		Location:           matching.LocationRequirement{Raw: raw, Mode: mode},
		Sector:             strings.TrimSpace(payload.Sector),
	}, nil
}
