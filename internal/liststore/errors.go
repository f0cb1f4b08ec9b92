package liststore

import (
	"net/http"
	"strings"

	"github.com/mmcdole/cinelist/internal/domain"
)

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case code == http.StatusNotFound:
		return domain.ErrNotFound
	case code == http.StatusConflict:
		return domain.ErrAlreadyExists
	default:
		return domain.ErrServerError
	}
}

// classifyMessage maps the backend's in-band {"error": "..."} text to a sentinel
func classifyMessage(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "already"):
		return domain.ErrAlreadyExists
	case strings.Contains(lower, "not found"):
		return domain.ErrNotFound
	default:
		return domain.ErrServerError
	}
}

// isRetryable reports whether the given HTTP status code should be retried
func isRetryable(code int) bool {
	switch code {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
