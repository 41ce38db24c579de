package agents

import (
	"context"
	"errors"
	"strings"
)

// Classify maps a backend error onto the orchestrator's failure taxonomy.
// Providers rarely expose typed errors across API and subprocess backends,
// so classification falls back to response-text inspection.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out") ||
		strings.Contains(lower, "deadline exceeded"):
		return KindTimeout
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "quota") || strings.Contains(lower, "resource exhausted") ||
		strings.Contains(lower, "resource_exhausted"):
		return KindQuota
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "403") || strings.Contains(lower, "forbidden") ||
		strings.Contains(lower, "api key") || strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "permission denied"):
		return KindAuth
	case strings.Contains(lower, "404") || strings.Contains(lower, "not found") ||
		strings.Contains(lower, "no such file") || strings.Contains(lower, "executable file not found"):
		return KindNotFound
	default:
		return KindOther
	}
}
