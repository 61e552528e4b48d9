package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// maxListLimit bounds ?limit= so one request cannot format the whole file.
const maxListLimit = 10000

// parseLimit reads ?limit=N. Missing, non-numeric or non-positive values
// fall back to def; large values are capped.
func parseLimit(r *http.Request, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return min(n, maxListLimit)
}

// sanitizeInput removes control characters other than tab and line breaks
// and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	return "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// requestID reuses a caller-supplied X-Request-ID when it looks sane.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" && len(id) <= 64 {
		return sanitizeInput(id)
	}
	return generateRequestID()
}
