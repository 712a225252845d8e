package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spigell/cv-matcher/internal/ai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{name: "validation", err: &ValidationError{Field: "jobDescription", Message: "too short"}, kind: KindValidation, status: 400},
		{name: "extraction", err: &ExtractionError{Message: "bad json"}, kind: KindExtraction, status: 502},
		{name: "extraction caused by quota", err: &ExtractionError{Message: "model call failed", Cause: ai.ErrQuotaExceeded}, kind: KindQuotaExceeded, status: 402},
		{name: "rate limited", err: fmt.Errorf("wrapped: %w", ai.ErrRateLimited), kind: KindRateLimited, status: 429},
		{name: "unknown", err: errors.New("boom"), kind: KindInternal, status: 500},
		{name: "context", err: context.Canceled, kind: KindInternal, status: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, status := Classify(tt.err)
			if kind != tt.kind || status != tt.status {
				t.Fatalf("Classify() = %s/%d, want %s/%d", kind, status, tt.kind, tt.status)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	if Describe(nil) != nil {
		t.Fatal("expected nil problem for nil error")
	}

	p := Describe(&ExtractionError{Message: "model call failed", Cause: ai.ErrQuotaExceeded})
	if p.Kind != KindQuotaExceeded || p.Retryable {
		t.Fatalf("unexpected problem: %+v", p)
	}
	if p.Message == "" || p.Detail == "" {
		t.Fatalf("expected message and detail, got %+v", p)
	}

	if !Describe(ai.ErrRateLimited).Retryable {
		t.Fatal("rate limiting should be retryable")
	}
	if !Describe(&ExtractionError{Message: "unusable model response"}).Retryable {
		t.Fatal("a plain extraction failure should be retryable by resubmission")
	}
	if Describe(errors.New("boom")).Retryable {
		t.Fatal("internal errors should not be retryable")
	}
}
