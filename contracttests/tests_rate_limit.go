package contracttests

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/reservekit/api-contract-tests/mock"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// retryDelay reads a Retry-After header given either as seconds or as an HTTP date.
func retryDelay(h http.Header, now time.Time) (time.Duration, bool) {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

func DoRateLimitTests(t *T) {
	rateLimited := func(t *T, retryAfter string) {
		t.Mock().ScheduleError(transport.MethodPost, http.StatusTooManyRequests,
			t.ErrorExample(keyCreateReservation, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"),
			mock.ErrorMeta{Headers: map[string]string{"retry-after": retryAfter}})
	}

	t.Run("429 carries error code and retry-after seconds", func(t *T) {
		rateLimited(t, "60")

		_, err := createReservation(t, t.RequestExample(keyCreateReservation), nil)
		te := t.RequireTransportError(err)
		require.NotNil(t, te.Response)
		assert.Equal(t, http.StatusTooManyRequests, te.Response.Status)
		assert.Equal(t, "RATE_LIMIT_EXCEEDED", te.Response.Data.(map[string]any)["errorCode"])
		assert.Equal(t, "60", te.Response.Headers.Get("Retry-After"))

		d, ok := retryDelay(te.Response.Headers, time.Now())
		require.True(t, ok)
		assert.Equal(t, time.Minute, d)
	})

	t.Run("retry-after may be an HTTP date", func(t *T) {
		now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
		rateLimited(t, now.Add(90*time.Second).Format(http.TimeFormat))

		_, err := createReservation(t, t.RequestExample(keyCreateReservation), nil)
		te := t.RequireTransportError(err)
		d, ok := retryDelay(te.Response.Headers, now)
		require.True(t, ok)
		assert.Equal(t, 90*time.Second, d)
	})

	t.Run("request succeeds once the limit clears", func(t *T) {
		rateLimited(t, "1")
		t.Mock().ScheduleSuccess(transport.MethodPost, t.Example(keyCreateReservation))

		payload := t.RequestExample(keyCreateReservation)
		_, err := createReservation(t, payload, nil)
		assert.Equal(t, http.StatusTooManyRequests, t.RequireTransportError(err).Status())

		resp, err := createReservation(t, payload, nil)
		require.NoError(t, err)
		assert.Equal(t, "RSV_A7K9M2X8", resp.Data.(map[string]any)["reservationId"])
		assert.Equal(t, 2, t.Mock().CallCount(transport.MethodPost))
	})
}
