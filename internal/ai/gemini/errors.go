package gemini

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/spigell/cv-matcher/internal/ai"
)

var errEmptyResponse = errors.New("gemini api returned empty response")

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9]+(?:\.[0-9]+)?)\s*(ms|s|sec|secs|seconds?)?`)

var quotaMarkers = []string{"billing", "credits", "check your plan", "free tier"}

// classify maps genai errors onto the gateway taxonomy.
func classify(err error) ai.Classification {
	apiErr, ok := asAPIError(err)
	if !ok {
		if errors.Is(err, errEmptyResponse) {
			return ai.Classification{Kind: ai.ErrProvider}
		}
		// Transport failures never reached the API.
		return ai.Classification{Kind: ai.ErrProvider, Retryable: true}
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		// Per-minute limits also mention billing but carry RetryInfo. The
		// retrier promotes delays above its maximum to quota.
		if delay := retryInfoDelay(apiErr); delay > 0 {
			return ai.Classification{Kind: ai.ErrRateLimited, Retryable: true, RetryAfter: delay}
		}
		message := strings.ToLower(apiErr.Message)
		for _, marker := range quotaMarkers {
			if strings.Contains(message, marker) {
				return ai.Classification{Kind: ai.ErrQuotaExceeded}
			}
		}
		return ai.Classification{
			Kind:       ai.ErrRateLimited,
			Retryable:  true,
			RetryAfter: retryDelay(apiErr),
		}
	case apiErr.Code >= http.StatusInternalServerError:
		return ai.Classification{Kind: ai.ErrProvider, Retryable: true}
	default:
		return ai.Classification{Kind: ai.ErrProvider}
	}
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}

	return genai.APIError{}, false
}

// retryInfoDelay reads the google.rpc.RetryInfo detail, zero when absent.
func retryInfoDelay(apiErr genai.APIError) time.Duration {
	for _, detail := range apiErr.Details {
		kind, _ := detail["@type"].(string)
		if !strings.HasSuffix(kind, "RetryInfo") {
			continue
		}
		if raw, ok := detail["retryDelay"].(string); ok {
			if d, err := time.ParseDuration(raw); err == nil {
				return d
			}
		}
	}
	return 0
}

// retryDelay prefers RetryInfo, falling back to a "retry after N seconds"
// hint in the message.
func retryDelay(apiErr genai.APIError) time.Duration {
	if d := retryInfoDelay(apiErr); d > 0 {
		return d
	}

	match := retryAfterPattern.FindStringSubmatch(apiErr.Message)
	if match == nil {
		return 0
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}

	if strings.EqualFold(match[2], "ms") {
		return time.Duration(value * float64(time.Millisecond))
	}
	return time.Duration(value * float64(time.Second))
}
