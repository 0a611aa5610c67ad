package calllog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/reservekit/api-contract-tests/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func succeedWith(data any) transport.VerbFunc {
	return func(ctx context.Context, url string, body any, cfg *transport.RequestConfig) (*transport.Response, error) {
		h := make(http.Header)
		h.Set("X-Api-Key", "response-key")
		h.Set("Content-Type", "application/json")
		return &transport.Response{Status: 200, StatusText: "OK", Headers: h, Data: data}, nil
	}
}

func failWith(err error) transport.VerbFunc {
	return func(ctx context.Context, url string, body any, cfg *transport.RequestConfig) (*transport.Response, error) {
		return nil, err
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var ret []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), "line was: %s", line)
		ret = append(ret, m)
	}
	return ret
}

func authConfig() *transport.RequestConfig {
	cfg := transport.WithHeader("Authorization", "Bearer secret-token")
	cfg.Headers.Set("Idempotency-Key", "k1")
	return cfg
}

func TestInfoModeLogsOnlyErrors(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Now: fixedClock})

	_, err := l.Wrap(transport.MethodGet, succeedWith("ok"))(context.Background(), "/menus", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	httpErr := &transport.Error{
		Message: "Request failed with status code 404",
		Response: &transport.ErrorResponse{
			Status:  404,
			Data:    map[string]any{"errorCode": "MENU_NOT_FOUND"},
			Headers: http.Header{"X-Api-Key": {"k-123"}},
		},
	}
	_, err = l.Wrap(transport.MethodGet, failWith(httpErr))(context.Background(), "/menus/9", nil, nil)
	assert.Same(t, httpErr, err)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	rec := lines[0]
	assert.Equal(t, "error", rec["level"])
	assert.Equal(t, "error", rec["type"])
	assert.Equal(t, "GET", rec["method"])
	assert.Equal(t, "/menus/9", rec["url"])
	assert.Equal(t, float64(404), rec["status"])
	assert.Equal(t, "Request failed with status code 404", rec["error"])
	assert.Equal(t, map[string]any{"errorCode": "MENU_NOT_FOUND"}, rec["body"])
	assert.Equal(t, map[string]any{"X-Api-Key": RedactedMarker}, rec["headers"])
	assert.Equal(t, "2026-10-16T12:00:00Z", rec["timestamp"])
}

func TestDebugModeLogsRequestAndResponse(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Mode: ModeDebug, Output: &buf, Now: fixedClock, BaseURL: "https://api.test/v1"})
	ctx := WithTestPath(context.Background(), "reservations", "creates a reservation")

	_, err := l.Wrap(transport.MethodPost, succeedWith(`{"reservationId":"RSV_1"}`))(
		ctx, "/reservations", map[string]any{"partySize": 2}, authConfig())
	require.NoError(t, err)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	req := lines[0]
	assert.Equal(t, "debug", req["level"])
	assert.Equal(t, "request", req["type"])
	assert.Equal(t, "https://api.test/v1/reservations", req["fullUrl"])
	assert.Equal(t, "reservations > creates a reservation", req["test"])
	assert.Equal(t, map[string]any{"partySize": float64(2)}, req["body"])
	headers := req["headers"].(map[string]any)
	assert.Equal(t, RedactedMarker, headers["Authorization"])
	assert.Equal(t, "k1", headers["Idempotency-Key"])
	assert.NotContains(t, buf.String(), "secret-token")

	resp := lines[1]
	assert.Equal(t, "response", resp["type"])
	assert.Equal(t, float64(200), resp["status"])
	assert.Equal(t, map[string]any{"reservationId": "RSV_1"}, resp["body"])
	assert.Equal(t, RedactedMarker, resp["headers"].(map[string]any)["X-Api-Key"])
	assert.NotContains(t, buf.String(), "response-key")
}

func TestShowSensitiveDisclosesHeaders(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Mode: ModeDebug, Output: &buf, ShowSensitive: true})

	_, _ = l.Wrap(transport.MethodPost, succeedWith(nil))(context.Background(), "/r", nil, authConfig())
	assert.Contains(t, buf.String(), "Bearer secret-token")
}

func TestNetworkErrorIsLoggedWithoutResponse(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})
	netErr := &transport.Error{Code: "ECONNABORTED", Message: "timeout of 5000ms exceeded"}

	_, err := l.Wrap(transport.MethodPost, failWith(netErr))(context.Background(), "/reservations", nil, nil)
	assert.Same(t, netErr, err)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ECONNABORTED", lines[0]["code"])
	assert.Equal(t, "timeout of 5000ms exceeded", lines[0]["error"])
	assert.Equal(t, NoResponseMarker, lines[0]["response"])
	assert.NotContains(t, lines[0], "status")
}

func TestMaxBodyTruncatesBody(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Mode: ModeDebug, Output: &buf, MaxBody: 10})

	_, _ = l.Wrap(transport.MethodGet, succeedWith(map[string]any{"description": strings.Repeat("x", 50)}))(
		context.Background(), "/menus/1", nil, nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	body, ok := lines[1]["body"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(body, `{"descript`))
	assert.Contains(t, body, "…[truncated")
}

func TestInstallIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})
	calls := 0
	client := transport.NewClient(func(m transport.Method) transport.VerbFunc {
		return func(ctx context.Context, url string, body any, cfg *transport.RequestConfig) (*transport.Response, error) {
			calls++
			return nil, &transport.Error{Code: "ENETUNREACH", Message: "down"}
		}
	})

	assert.True(t, l.Install(client))
	assert.False(t, l.Install(client))
	assert.False(t, l.Install(nil))

	_, _ = client.Get(context.Background(), "/x", nil)
	assert.Equal(t, 1, calls)
	assert.Len(t, decodeLines(t, &buf), 1)
}

type panickingWriter struct{}

func (panickingWriter) Write([]byte) (int, error) { panic("disk on fire") }

func TestRenderingFailureDoesNotAffectCall(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatPretty} {
		t.Run(string(format), func(t *testing.T) {
			l := New(Options{Mode: ModeDebug, Format: format, Output: panickingWriter{}})
			call := l.Wrap(transport.MethodGet, succeedWith("fine"))
			done := make(chan struct{})
			go func() {
				defer close(done)
				for i := 0; i < 3; i++ {
					resp, err := call(context.Background(), "/x", nil, nil)
					assert.NoError(t, err)
					if assert.NotNil(t, resp) {
						assert.Equal(t, "fine", resp.Data)
					}
				}
			}()
			select {
			case <-done:
			case <-time.After(5 * time.Second):
				require.Fail(t, "call blocked after the log output failed")
			}
		})
	}
}

func TestRecoveringWriterReportsPanicAsError(t *testing.T) {
	n, err := newRecoveringWriter(panickingWriter{}).Write([]byte("x"))
	assert.Equal(t, 0, n)
	assert.EqualError(t, err, "log output failed: disk on fire")
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Mode: ModeDebug, Format: FormatPretty, Output: &buf, Now: fixedClock})
	ctx := WithTestName(context.Background(), "rate limit")
	rateErr := &transport.Error{
		Response: &transport.ErrorResponse{
			Status:  429,
			Data:    map[string]any{"errorCode": "RATE_LIMIT_EXCEEDED"},
			Headers: http.Header{"Retry-After": {"60"}},
		},
	}

	_, _ = l.Wrap(transport.MethodPost, failWith(rateErr))(ctx, "https://api.test/reservations?x=1", nil, authConfig())

	out := buf.String()
	assert.Contains(t, out, "→ REQUEST  POST /reservations?x=1")
	assert.Contains(t, out, "✖ ERROR  POST /reservations?x=1")
	assert.Contains(t, out, "https://api.test/reservations?x=1")
	assert.Contains(t, out, "rate limit")
	assert.Contains(t, out, "status:  429")
	assert.Contains(t, out, "  Retry-After: 60")
	assert.Contains(t, out, "  Authorization: [REDACTED]")
	assert.Contains(t, out, `"errorCode": "RATE_LIMIT_EXCEEDED"`)
	assert.Contains(t, out, heavyRule)
	assert.NotContains(t, out, "secret-token")
	assert.NotContains(t, out, "\x1b[")
}

func TestParseModeAndFormat(t *testing.T) {
	m, err := ParseMode("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, ModeDebug, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeInfo, m)
	_, err = ParseMode("trace")
	assert.Error(t, err)

	f, err := ParseFormat("pretty")
	require.NoError(t, err)
	assert.Equal(t, FormatPretty, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestTestNameFromContext(t *testing.T) {
	assert.Equal(t, "", TestName(context.Background()))
	assert.Equal(t, "a > b", TestName(WithTestPath(context.Background(), "a", "b")))
}
