package requirements

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/ai/aitest"
	"github.com/spigell/cv-matcher/internal/matching"
)

const jobText = "Senior Data Engineer, London (hybrid). You must have Python and SQL; " +
	"AWS or Terraform would be a bonus. 5+ years in a regulated environment."

func TestParseShortDescriptionMakesNoModelCall(t *testing.T) {
	stub := &aitest.Stub{}
	parser := NewParser(stub, 0, zap.NewNop())

	_, err := parser.Parse(context.Background(), "Python dev, London")

	var verr *matching.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if stub.CallCount() != 0 {
		t.Fatalf("expected no model calls, got %d", stub.CallCount())
	}
}

func TestParseExtractsRequirements(t *testing.T) {
	stub := &aitest.Stub{Responses: []aitest.Response{{Text: "```json\n" + `{
		"title": "Senior Data Engineer",
		"mustHaveSkills": ["Python", "SQL", "JS"],
		"niceToHaveSkills": ["AWS", "terraform", "python"],
		"minExperienceYears": 5,
		"maxExperienceYears": null,
		"seniority": "senior",
		"location": {"raw": "London (hybrid)", "mode": "unspecified"},
		"sector": "Financial Services"
	}` + "\n```"}}}

	parser := NewParser(stub, 0, zap.NewNop())
	req, err := parser.Parse(context.Background(), jobText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Title != "Senior Data Engineer" {
		t.Fatalf("unexpected title: %q", req.Title)
	}
	if !reflect.DeepEqual(req.MustHaveSkills, []string{"javascript", "python", "sql"}) {
		t.Fatalf("unexpected must-have skills: %v", req.MustHaveSkills)
	}
	if !reflect.DeepEqual(req.NiceToHaveSkills, []string{"aws", "terraform"}) {
		t.Fatalf("expected must-have skills removed from nice-to-have, got %v", req.NiceToHaveSkills)
	}
	if req.MinExperienceYears == nil || *req.MinExperienceYears != 5 || req.MaxExperienceYears != nil {
		t.Fatalf("unexpected experience bounds: %v %v", req.MinExperienceYears, req.MaxExperienceYears)
	}
	if req.Seniority != matching.SenioritySenior {
		t.Fatalf("unexpected seniority: %q", req.Seniority)
	}
	if req.Location.Mode != matching.LocationHybrid || req.Location.Raw != "London (hybrid)" {
		t.Fatalf("expected hybrid inferred from text, got %+v", req.Location)
	}
	if req.Sector != "Financial Services" {
		t.Fatalf("unexpected sector: %q", req.Sector)
	}

	calls := stub.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected a single extraction call, got %d", len(calls))
	}
	if !strings.Contains(calls[0].System, `"mustHaveSkills"`) {
		t.Fatal("expected the schema in the system prompt")
	}
	if strings.Contains(calls[0].System, "{{SCHEMA}}") {
		t.Fatal("expected the schema placeholder to be replaced")
	}
	if !strings.Contains(calls[0].Message, jobText) {
		t.Fatal("expected the job description in the message")
	}
}

func TestParseExtractionFailures(t *testing.T) {
	tests := []struct {
		name     string
		response aitest.Response
	}{
		{name: "model error", response: aitest.Response{Err: ai.ErrRateLimited}},
		{name: "not json", response: aitest.Response{Text: "I could not find any requirements."}},
		{name: "missing skills", response: aitest.Response{Text: `{"title":"Dev","location":{"raw":"","mode":"remote"}}`}},
		{name: "null skills", response: aitest.Response{Text: `{"title":"Dev","mustHaveSkills":null,"niceToHaveSkills":[],"location":{"raw":"","mode":"remote"}}`}},
		{name: "blank title", response: aitest.Response{Text: `{"title":"  ","mustHaveSkills":[],"niceToHaveSkills":[],"location":{"raw":"","mode":"remote"}}`}},
		{name: "bad mode", response: aitest.Response{Text: `{"title":"Dev","mustHaveSkills":[],"niceToHaveSkills":[],"location":{"raw":"","mode":"moon"}}`}},
		{name: "inverted bounds", response: aitest.Response{Text: `{"title":"Dev","mustHaveSkills":[],"niceToHaveSkills":[],"minExperienceYears":8,"maxExperienceYears":3,"location":{"raw":"","mode":"remote"}}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &aitest.Stub{Responses: []aitest.Response{tt.response}}
			_, err := NewParser(stub, 0, zap.NewNop()).Parse(context.Background(), jobText)

			var eerr *matching.ExtractionError
			if !errors.As(err, &eerr) {
				t.Fatalf("expected extraction error, got %v", err)
			}
		})
	}
}

func TestParseKeepsGatewayKind(t *testing.T) {
	stub := &aitest.Stub{Responses: []aitest.Response{{Err: ai.ErrQuotaExceeded}}}

	_, err := NewParser(stub, 0, zap.NewNop()).Parse(context.Background(), jobText)
	if !errors.Is(err, ai.ErrQuotaExceeded) {
		t.Fatalf("expected quota error to stay visible, got %v", err)
	}
}

func TestParseSeniorityEnumAndRemote(t *testing.T) {
	stub := &aitest.Stub{Responses: []aitest.Response{{Text: `{"title":"Go Developer","mustHaveSkills":["golang"],"niceToHaveSkills":[],"seniority":"principal","location":{"raw":"","mode":"remote"}}`}}}

	req, err := NewParser(stub, 0, zap.NewNop()).Parse(context.Background(), jobText)
	if err == nil {
		t.Fatalf("expected enum violation for seniority, got %+v", req)
	}

	stub = &aitest.Stub{Responses: []aitest.Response{{Text: `{"title":"Go Developer","mustHaveSkills":["golang"],"niceToHaveSkills":[],"location":{"raw":"","mode":"remote"}}`}}}
	req, err = NewParser(stub, 0, zap.NewNop()).Parse(context.Background(), jobText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !req.Location.Remote() || req.Seniority != matching.SeniorityUnknown {
		t.Fatalf("unexpected requirement: %+v", req)
	}
	if !reflect.DeepEqual(req.MustHaveSkills, []string{"go"}) {
		t.Fatalf("unexpected skills: %v", req.MustHaveSkills)
	}
}
