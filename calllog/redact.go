package calllog

import (
	"net/http"
	"strings"
)

// RedactedMarker replaces the value of a sensitive header.
const RedactedMarker = "[REDACTED]"

var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"x-api-key":     true,
}

// IsSensitiveHeader reports whether a header's value is redacted in logs.
func IsSensitiveHeader(name string) bool {
	return sensitiveHeaders[strings.ToLower(name)]
}

// SanitizeHeaders flattens a header map for logging, replacing sensitive values with
// RedactedMarker unless show is true. Multiple values are joined with ", ".
func SanitizeHeaders(h http.Header, show bool) map[string]string {
	if h == nil {
		return nil
	}
	ret := make(map[string]string, len(h))
	for k, vv := range h {
		if !show && IsSensitiveHeader(k) {
			ret[k] = RedactedMarker
			continue
		}
		ret[k] = strings.Join(vv, ", ")
	}
	return ret
}
