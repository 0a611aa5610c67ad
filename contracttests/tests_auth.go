package contracttests

import (
	"net/http"

	"github.com/reservekit/api-contract-tests/auth"
	"github.com/reservekit/api-contract-tests/mock"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoAuthTests(t *T) {
	t.Run("injection is installed on every verb", func(t *T) {
		requireAuthEnabled(t)
		assert.True(t, t.Client().Installed(auth.Name))
	})

	t.Run("bearer token is added when absent", func(t *T) {
		requireAuthEnabled(t)
		t.Mock().ScheduleSuccess(transport.MethodGet, t.Example(keyGetMenu))

		_, err := t.Client().Get(t.Context(), "/menus/MENU_0001", nil)
		require.NoError(t, err)
		assert.Equal(t, "Bearer "+t.Environment().Config.AccessToken,
			lastCall(t, transport.MethodGet).Config.Header("Authorization"))
	})

	t.Run("existing credentials are left alone", func(t *T) {
		requireAuthEnabled(t)
		t.Mock().ScheduleSuccess(transport.MethodPut, t.Example(keyPayReservation))

		cfg := transport.WithHeader("authorization", "Bearer someone-else")
		_, err := t.Client().Put(t.Context(), "/reservations/RSV_A7K9M2X8/payment",
			t.RequestExample(keyPayReservation), cfg)
		require.NoError(t, err)
		got := lastCall(t, transport.MethodPut).Config
		assert.Equal(t, []string{"Bearer someone-else"}, got.Headers.Values("Authorization"))
	})

	t.Run("skip marker sends the request without credentials", func(t *T) {
		requireAuthEnabled(t)
		t.Mock().ScheduleError(transport.MethodPost, http.StatusUnauthorized,
			t.ErrorExample(keyCreateReservation, http.StatusUnauthorized, "UNAUTHORIZED"))

		_, err := createReservation(t, t.RequestExample(keyCreateReservation),
			transport.WithHeader(auth.SkipHeader, "true"))
		te := t.RequireTransportError(err)
		assert.Equal(t, http.StatusUnauthorized, te.Status())
		assert.Equal(t, "UNAUTHORIZED", te.Response.Data.(map[string]any)["errorCode"])
		assert.False(t, auth.HasCredentials(lastCall(t, transport.MethodPost).Config))
	})

	t.Run("no credentials are injected when disabled", func(t *T) {
		if t.Environment().Config.AuthEnabled() {
			t.SkipWithReason("credential injection is enabled")
		}
		t.Mock().ScheduleSuccess(transport.MethodGet, t.Example(keyGetMenu))
		_, err := t.Client().Get(t.Context(), "/menus/MENU_0001", nil)
		require.NoError(t, err)
		assert.False(t, auth.HasCredentials(lastCall(t, transport.MethodGet).Config))
	})
}

func requireAuthEnabled(t *T) {
	if !t.Environment().Config.AuthEnabled() {
		t.SkipWithReason("credential injection is disabled or no access token is configured")
	}
}

func lastCall(t *T, m transport.Method) mock.Call {
	calls := t.Mock().Calls(m)
	require.NotEmpty(t, calls, "no %s call was made", m)
	return calls[len(calls)-1]
}
