package calllog

import (
	"net/url"
	"time"

	"github.com/reservekit/api-contract-tests/transport"
)

// RecordType distinguishes the three kinds of log records.
type RecordType string

const (
	TypeRequest  RecordType = "request"
	TypeResponse RecordType = "response"
	TypeError    RecordType = "error"
)

// Record is one structured log entry about a verb call. Records are not retained after
// they are rendered.
type Record struct {
	Type    RecordType
	Method  transport.Method
	URL     string
	FullURL string

	// Headers are already sanitized.
	Headers map[string]string

	// Body is the request or response body, parsed if it was JSON-shaped text.
	Body any

	Status  int
	Code    string
	Message string

	// NoResponse is set on error records for failures that produced no HTTP response.
	NoResponse bool

	TestContext string
	Timestamp   time.Time
}

// shortURL strips the scheme and host from an absolute URL.
func shortURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	short := u.EscapedPath()
	if short == "" {
		short = "/"
	}
	if u.RawQuery != "" {
		short += "?" + u.RawQuery
	}
	return short
}
