package schemas

import (
	"strings"
	"time"
)

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}

// NormalizeHandle returns the canonical form of an account handle: trimmed
// of surrounding whitespace and lowercased. Every Store row and cache key
// uses this form.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// NormalizeBaseURL strips trailing slashes from a provider base URL so that
// "https://github.com/" and "https://github.com" address the same rows.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// FormatEpochSeconds converts store epoch seconds to the ISO-8601 UTC form
// used on the wire.
func FormatEpochSeconds(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
