package schemas

import (
	"errors"
	"strings"
	"testing"
)

type samplePayload struct {
	Name  string   `json:"name" jsonschema:"minLength=1"`
	Score float64  `json:"score" jsonschema:"minimum=0,maximum=100"`
	Level string   `json:"level" jsonschema:"enum=low,enum=high"`
	Years *float64 `json:"years,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

var sampleSchema = MustCompile("sample", &samplePayload{})

func TestDecodeValidPayload(t *testing.T) {
	raw := "Here you go:\n```json\n{\"name\":\"Ada\",\"score\":87.5,\"level\":\"high\",\"years\":null,\"tags\":[\"go\",null]}\n```"

	var out samplePayload
	if err := sampleSchema.Decode(raw, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Name != "Ada" || out.Score != 87.5 || out.Level != "high" {
		t.Fatalf("unexpected payload: %+v", out)
	}
	if out.Years != nil {
		t.Fatalf("expected null years to stay nil, got %v", *out.Years)
	}
	if len(out.Tags) != 1 || out.Tags[0] != "go" {
		t.Fatalf("unexpected tags: %v", out.Tags)
	}
}

func TestDecodeRejectsSchemaViolations(t *testing.T) {
	var out samplePayload
	err := sampleSchema.Decode(`{"name":"","score":140,"level":"medium"}`, &out)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Errors) < 3 {
		t.Fatalf("expected every violation reported, got %+v", verr.Errors)
	}
	if !strings.Contains(err.Error(), "sample payload failed validation") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestDecodeRejectsMissingRequired(t *testing.T) {
	var out samplePayload
	err := sampleSchema.Decode(`{"name":"Ada","level":"low"}`, &out)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	var out samplePayload
	for _, raw := range []string{"", "not json", `{"name":`} {
		if err := sampleSchema.Decode(raw, &out); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Decode(%q) = %v, want ErrMalformed", raw, err)
		}
	}
}

func TestCleanJSON(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n[1,2]\n```":         `[1,2]`,
		"Sure! {\"a\":1} Thanks":  `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}

	for input, want := range tests {
		if got := CleanJSON(input); got != want {
			t.Fatalf("CleanJSON(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSchemaStringIsEmbeddable(t *testing.T) {
	doc := sampleSchema.String()
	if strings.Contains(doc, "$schema") || strings.Contains(doc, "$ref") {
		t.Fatalf("expected a self-contained schema without meta keys, got %s", doc)
	}
	if !strings.Contains(doc, `"score"`) {
		t.Fatalf("expected properties in schema, got %s", doc)
	}
}
