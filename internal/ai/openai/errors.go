package openai

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/spigell/cv-matcher/internal/ai"
)

var errEmptyResponse = errors.New("openai api returned empty response")

const codeInsufficientQuota = "insufficient_quota"

func classify(err error) ai.Classification {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		if errors.Is(err, errEmptyResponse) {
			return ai.Classification{Kind: ai.ErrProvider}
		}
		return ai.Classification{Kind: ai.ErrProvider, Retryable: true}
	}

	switch {
	case apiErr.Code == codeInsufficientQuota || apiErr.Type == codeInsufficientQuota:
		return ai.Classification{Kind: ai.ErrQuotaExceeded}
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return ai.Classification{
			Kind:       ai.ErrRateLimited,
			Retryable:  true,
			RetryAfter: retryAfter(apiErr.Response),
		}
	case apiErr.StatusCode >= http.StatusInternalServerError:
		return ai.Classification{Kind: ai.ErrProvider, Retryable: true}
	default:
		return ai.Classification{Kind: ai.ErrProvider}
	}
}

// retryAfter reads retry-after-ms or Retry-After (seconds or HTTP date).
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	if raw := strings.TrimSpace(resp.Header.Get("retry-after-ms")); raw != "" {
		if ms, err := strconv.ParseFloat(raw, 64); err == nil && ms > 0 {
			return time.Duration(ms * float64(time.Millisecond))
		}
	}

	raw := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if raw == "" {
		return 0
	}

	if seconds, err := strconv.ParseFloat(raw, 64); err == nil && seconds > 0 {
		return time.Duration(seconds * float64(time.Second))
	}

	if at, err := http.ParseTime(raw); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}

	return 0
}
