package matching

import "fmt"

// ValidationError reports caller-correctable input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ExtractionError reports that structured requirements could not be
// extracted from a job description. Resubmitting may succeed.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("requirement extraction failed: %s: %v", e.Message, e.Cause)
	}
	return "requirement extraction failed: " + e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
