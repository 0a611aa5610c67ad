package contracttests

import (
	"net/http"
	"time"

	"github.com/reservekit/api-contract-tests/auth"
	"github.com/reservekit/api-contract-tests/stubservice"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConfig returns a request config the stub service accepts. When credential injection
// is disabled the caller has to authenticate explicitly.
func stubConfig(t *T) *transport.RequestConfig {
	if t.Environment().Config.AuthEnabled() {
		return &transport.RequestConfig{Headers: make(http.Header)}
	}
	return transport.WithHeader("Authorization", "Bearer stub-caller")
}

func DoStubServiceTests(t *T) {
	t.Run("documented success is served over HTTP", func(t *T) {
		resp, err := t.Stub().Get(t.Context(), "/menus/MENU_0001", stubConfig(t))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		t.RequireShape(keyGetMenu, http.StatusOK, resp.Data)

		resp, err = t.Stub().Post(t.Context(), "/reservations", t.RequestExample(keyCreateReservation), stubConfig(t))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Status)
		t.RequireShape(keyCreateReservation, http.StatusCreated, resp.Data)
	})

	t.Run("request without credentials is rejected with 401", func(t *T) {
		cfg := transport.WithHeader(auth.SkipHeader, "true")
		_, err := t.Stub().Get(t.Context(), "/menus/MENU_0001", cfg)
		te := t.RequireTransportError(err)
		require.NotNil(t, te.Response)
		assert.Equal(t, http.StatusUnauthorized, te.Response.Status)
		assert.Equal(t, "UNAUTHORIZED", te.Response.Data.(map[string]any)["errorCode"])
	})

	t.Run("reused idempotency key with a different body conflicts", func(t *T) {
		cfg := stubConfig(t)
		cfg.Headers.Set(stubservice.IdempotencyHeader, uuid.NewString())
		payload := t.RequestExample(keyCreateReservation)

		_, err := t.Stub().Post(t.Context(), "/reservations", payload, cfg)
		require.NoError(t, err)
		_, err = t.Stub().Post(t.Context(), "/reservations", payload, cfg)
		require.NoError(t, err, "an identical replay is not a conflict")

		payload["partySize"] = 2
		_, err = t.Stub().Post(t.Context(), "/reservations", payload, cfg)
		te := t.RequireTransportError(err)
		assert.Equal(t, http.StatusConflict, te.Status())
		assert.Equal(t, "IDEMP_CONFLICT", te.Response.Data.(map[string]any)["errorCode"])
	})

	t.Run("429 over HTTP carries retry-after", func(t *T) {
		cfg := stubConfig(t)
		cfg.Headers.Set(stubservice.ErrorHeader, "429 RATE_LIMIT_EXCEEDED")

		_, err := t.Stub().Post(t.Context(), "/reservations", t.RequestExample(keyCreateReservation), cfg)
		te := t.RequireTransportError(err)
		require.NotNil(t, te.Response)
		assert.Equal(t, http.StatusTooManyRequests, te.Response.Status)
		assert.Equal(t, "RATE_LIMIT_EXCEEDED", te.Response.Data.(map[string]any)["errorCode"])
		d, ok := retryDelay(te.Response.Headers, time.Now())
		require.True(t, ok)
		assert.Equal(t, time.Duration(stubservice.RetryAfterSeconds)*time.Second, d)
	})

	t.Run("undocumented route is a 404", func(t *T) {
		_, err := t.Stub().Get(t.Context(), "/kitchens/1", stubConfig(t))
		te := t.RequireTransportError(err)
		assert.Equal(t, http.StatusNotFound, te.Status())
		assert.Equal(t, "ROUTE_NOT_FOUND", te.Response.Data.(map[string]any)["errorCode"])
	})
}
