// Package schemas guards the boundary where untrusted model output enters the
// program: payload structs are reflected to JSON Schema, responses are
// validated against it and only then decoded into typed values.
package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformed is returned when a response is not JSON at all.
var ErrMalformed = errors.New("malformed json payload")

// ValidationError lists every schema violation found in a payload.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError is a single violation at a JSON path.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s payload failed validation:", e.Schema)
	for i, fe := range e.Errors {
		if i > 0 {
			sb.WriteString(";")
		}
		fmt.Fprintf(&sb, " %s: %s", fe.Field, fe.Message)
	}
	return sb.String()
}

// Schema is a compiled JSON Schema reflected from a Go payload type.
type Schema struct {
	name     string
	raw      []byte
	compiled *gojsonschema.Schema
}

// Compile reflects v into a JSON Schema and compiles it for validation.
func Compile(name string, v any) (*Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}

	reflected := reflector.Reflect(v)
	reflected.Version = ""
	reflected.ID = ""

	raw, err := json.MarshalIndent(reflected, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", name, err)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}

	return &Schema{name: name, raw: raw, compiled: compiled}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(name string, v any) *Schema {
	s, err := Compile(name, v)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name used in errors.
func (s *Schema) Name() string {
	return s.name
}

// String returns the indented schema document, suitable for prompts.
func (s *Schema) String() string {
	return string(s.raw)
}

// Validate checks an already-parsed JSON value.
func (s *Schema) Validate(value any) error {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return fmt.Errorf("validate %s payload: %w", s.name, err)
	}

	if result.Valid() {
		return nil
	}

	verr := &ValidationError{
		Schema: s.name,
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}

// DecodeValue drops nulls from value, validates it and decodes it into out.
func (s *Schema) DecodeValue(value any, out any) error {
	value = DropNulls(value)
	if err := s.Validate(value); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build %s decoder: %w", s.name, err)
	}

	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("decode %s payload: %w", s.name, err)
	}
	return nil
}

// Decode parses raw model output and decodes it into out.
func (s *Schema) Decode(raw string, out any) error {
	value, err := Parse(raw)
	if err != nil {
		return err
	}
	return s.DecodeValue(value, out)
}

// Parse strips code fences and surrounding prose from raw and unmarshals the
// JSON inside it.
func Parse(raw string) (any, error) {
	cleaned := CleanJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformed)
	}

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return value, nil
}

// CleanJSON removes markdown code fences and any text before the first
// opening or after the last closing brace or bracket.
func CleanJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.TrimSpace(strings.Trim(raw, "`"))

	start := strings.IndexAny(raw, "{[")
	if start == -1 {
		return raw
	}
	end := strings.LastIndexAny(raw, "}]")
	if end < start {
		return raw[start:]
	}
	return raw[start : end+1]
}

// DropNulls removes null object members recursively so optional fields the
// model filled with null validate as absent.
func DropNulls(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if item == nil {
				continue
			}
			out[key] = DropNulls(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, DropNulls(item))
		}
		return out
	default:
		return value
	}
}
