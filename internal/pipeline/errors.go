package pipeline

import (
	"errors"
	"net/http"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/matching"
)

type (
	ValidationError = matching.ValidationError
	ExtractionError = matching.ExtractionError
)

// Kind is the caller-facing error category.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindExtraction    Kind = "extraction"
	KindRateLimited   Kind = "rate_limited"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindInternal      Kind = "internal"
)

var kindStatus = map[Kind]int{
	KindValidation:    http.StatusBadRequest,
	KindExtraction:    http.StatusBadGateway,
	KindRateLimited:   http.StatusTooManyRequests,
	KindQuotaExceeded: http.StatusPaymentRequired,
	KindInternal:      http.StatusInternalServerError,
}

var kindHint = map[Kind]string{
	KindValidation:    "Check the job description and request parameters.",
	KindExtraction:    "The job description could not be analysed. Try submitting it again.",
	KindRateLimited:   "The AI provider is busy. Try again in a few minutes.",
	KindQuotaExceeded: "The AI provider quota is exhausted. Add credits or check billing for the configured account.",
	KindInternal:      "Unexpected error.",
}

// Problem is the serialisable form of a run error.
type Problem struct {
	Kind      Kind   `json:"kind"`
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	Retryable bool   `json:"retryable"`
}

func (p *Problem) Error() string {
	if p.Detail != "" {
		return p.Message + ": " + p.Detail
	}
	return p.Message
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsExtraction reports whether err is an *ExtractionError.
func IsExtraction(err error) bool {
	var eerr *ExtractionError
	return errors.As(err, &eerr)
}

// Classify maps err onto a Kind and an HTTP status. Quota and rate-limit
// causes win over a wrapping extraction failure.
func Classify(err error) (Kind, int) {
	kind := classify(err)
	return kind, kindStatus[kind]
}

func classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return KindValidation
	case errors.Is(err, ai.ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, ai.ErrRateLimited):
		return KindRateLimited
	case IsExtraction(err):
		return KindExtraction
	default:
		return KindInternal
	}
}

// Describe converts err into a Problem. It returns nil for a nil error.
func Describe(err error) *Problem {
	if err == nil {
		return nil
	}

	kind, status := Classify(err)
	return &Problem{
		Kind:      kind,
		Status:    status,
		Message:   kindHint[kind],
		Detail:    err.Error(),
		Retryable: kind == KindExtraction || ai.IsRetryable(err),
	}
}
