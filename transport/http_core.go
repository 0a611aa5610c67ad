package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// Network error codes reported in Error.Code when no response was received.
const (
	CodeTimeout            = "ECONNABORTED"
	CodeConnectionRefused  = "ECONNREFUSED"
	CodeNetworkUnreachable = "ENETUNREACH"
	CodeHostNotFound       = "ENOTFOUND"
	CodeNetwork            = "ERR_NETWORK"
)

// NewHTTPCore returns core verb functions that send real HTTP requests with the given client.
// Relative URLs are resolved against baseURL.
//
// Request bodies are sent as-is if they are strings or byte slices and JSON-encoded
// otherwise. Response bodies are decoded as JSON when they are valid JSON and returned as a
// string when they are not. Any status of 400 or above is returned as an *Error carrying the
// response; failures that produce no response are returned as an *Error with a network code.
func NewHTTPCore(client *http.Client, baseURL string) func(Method) VerbFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(m Method) VerbFunc {
		return func(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error) {
			return doHTTP(ctx, client, baseURL, m, url, body, cfg)
		}
	}
}

func doHTTP(
	ctx context.Context,
	client *http.Client,
	baseURL string,
	m Method,
	url string,
	body any,
	cfg *RequestConfig,
) (*Response, error) {
	target := ResolveURL(baseURL, url)
	if cfg != nil && len(cfg.Params) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + cfg.Params.Encode()
	}

	var reader io.Reader
	isJSON := false
	if m.HasBody() && body != nil {
		switch b := body.(type) {
		case []byte:
			reader = bytes.NewReader(b)
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encoding %s request body: %w", m, err)
			}
			reader = bytes.NewReader(data)
			isJSON = true
		}
	}

	if cfg != nil && cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, string(m), target, reader)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		for k, vv := range cfg.Headers {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
	}
	if isJSON && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, networkError(err, cfg)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, networkError(err, cfg)
	}

	decoded := decodeBody(data)
	if resp.StatusCode >= 400 {
		return nil, &Error{
			Message: fmt.Sprintf("Request failed with status code %d", resp.StatusCode),
			Response: &ErrorResponse{
				Status:  resp.StatusCode,
				Data:    decoded,
				Headers: resp.Header,
			},
		}
	}
	return &Response{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    resp.Header,
		Data:       decoded,
	}, nil
}

// ResolveURL joins a relative URL onto a base URL. Absolute URLs are returned unchanged.
func ResolveURL(baseURL, url string) string {
	if baseURL == "" || strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(url, "/")
}

func decodeBody(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	if json.Valid(data) {
		var v any
		if err := json.Unmarshal(data, &v); err == nil {
			return v
		}
	}
	return string(data)
}

func networkError(err error, cfg *RequestConfig) *Error {
	var netErr net.Error
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		msg := "timeout exceeded"
		if cfg != nil && cfg.Timeout > 0 {
			msg = fmt.Sprintf("timeout of %dms exceeded", cfg.Timeout.Milliseconds())
		}
		return &Error{Code: CodeTimeout, Message: msg}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &Error{Code: CodeConnectionRefused, Message: err.Error()}
	case errors.Is(err, syscall.ENETUNREACH):
		return &Error{Code: CodeNetworkUnreachable, Message: err.Error()}
	case errors.As(err, &dnsErr):
		return &Error{Code: CodeHostNotFound, Message: err.Error()}
	default:
		return &Error{Code: CodeNetwork, Message: err.Error()}
	}
}
