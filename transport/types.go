package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Method is an HTTP verb supported by the transport surface.
type Method string

const (
	MethodPost   Method = "POST"
	MethodGet    Method = "GET"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// AllMethods lists every verb, in the order clients are built.
var AllMethods = []Method{MethodPost, MethodGet, MethodPut, MethodDelete, MethodPatch}

// HasBody reports whether calls for this verb carry a request body.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// RequestConfig is the per-call configuration passed as the last argument of a verb.
type RequestConfig struct {
	Headers http.Header
	Params  url.Values
	Timeout time.Duration
}

// Clone returns a deep copy of the config. A nil config clones to an empty one, so the
// result is always safe to modify.
func (c *RequestConfig) Clone() *RequestConfig {
	if c == nil {
		return &RequestConfig{Headers: make(http.Header)}
	}
	ret := &RequestConfig{Timeout: c.Timeout}
	ret.Headers = c.Headers.Clone()
	if ret.Headers == nil {
		ret.Headers = make(http.Header)
	}
	if c.Params != nil {
		ret.Params = make(url.Values, len(c.Params))
		for k, v := range c.Params {
			ret.Params[k] = append([]string(nil), v...)
		}
	}
	return ret
}

// Header returns the value of a header from a possibly nil config.
func (c *RequestConfig) Header(name string) string {
	if c == nil || c.Headers == nil {
		return ""
	}
	return c.Headers.Get(name)
}

// WithHeader is a convenience for building a config with one header.
func WithHeader(name, value string) *RequestConfig {
	h := make(http.Header)
	h.Set(name, value)
	return &RequestConfig{Headers: h}
}

// Response is the resolved value of a successful verb call.
type Response struct {
	Status     int
	StatusText string
	Headers    http.Header
	Data       any
}

// VerbFunc is a single HTTP verb. Verbs without a request body (GET, DELETE) receive nil.
type VerbFunc func(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error)

// ErrorResponse is the HTTP response attached to a transport Error.
type ErrorResponse struct {
	Status  int
	Data    any
	Headers http.Header
}

// Error is the error type returned by verbs for both HTTP error responses and
// connection-level failures. A connection-level failure has a nil Response.
type Error struct {
	Code     string
	Message  string
	Response *ErrorResponse
}

func (e *Error) Error() string {
	switch {
	case e.Response != nil && e.Message != "":
		return e.Message
	case e.Response != nil:
		return fmt.Sprintf("request failed with status code %d", e.Response.Status)
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Code != "":
		return e.Code
	default:
		return e.Message
	}
}

// IsNetworkError reports whether the error models a failure that produced no response.
func (e *Error) IsNetworkError() bool {
	return e.Response == nil
}

// Status returns the response status, or 0 for network errors.
func (e *Error) Status() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.Status
}

// AsError returns the transport Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
