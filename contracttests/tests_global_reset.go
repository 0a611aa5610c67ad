package contracttests

import (
	"github.com/reservekit/api-contract-tests/auth"
	"github.com/reservekit/api-contract-tests/calllog"
	"github.com/reservekit/api-contract-tests/mock"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoGlobalResetTests(t *T) {
	t.Run("clearing everything keeps the client wrapped", func(t *T) {
		before := t.Client().Chain(transport.MethodPost).Names()

		t.Mock().ScheduleStickySuccess(transport.MethodPost, "stale")
		t.Mock().ClearAll()

		assert.Equal(t, 0, t.Mock().Pending(transport.MethodPost))
		assert.Equal(t, before, t.Client().Chain(transport.MethodPost).Names())
		if t.Environment().Config.AuthEnabled() {
			assert.True(t, t.Client().Installed(auth.Name))
		}
		if t.Environment().Config.LogAutowrap {
			assert.True(t, t.Client().Installed(calllog.Name))
		}

		_, err := t.Client().Post(t.Context(), "/reservations", nil, nil)
		assert.ErrorIs(t, err, mock.ErrNoOutcome, "sticky outcome must not survive a global reset")
	})

	t.Run("interceptors still run once per call after a reset", func(t *T) {
		t.Mock().ClearAll()
		t.Mock().ClearAll()
		t.Mock().ScheduleSuccess(transport.MethodGet, t.Example(keyGetMenu))

		_, err := t.Client().Get(t.Context(), "/menus/MENU_0001", nil)
		require.NoError(t, err)
		assert.Equal(t, 1, t.Mock().CallCount(transport.MethodGet))
		if t.Environment().Config.AuthEnabled() {
			assert.Equal(t, []string{"Bearer " + t.Environment().Config.AccessToken},
				lastCall(t, transport.MethodGet).Config.Headers.Values("Authorization"))
		}
	})

	t.Run("directly reset client is rewrapped before its next call", func(t *T) {
		if !t.Environment().Guard.Enabled() {
			t.SkipWithReason("no interceptors are enabled")
		}
		before := t.Client().Chain(transport.MethodDelete).Names()
		t.Client().Reset()
		assert.Empty(t, t.Client().Chain(transport.MethodDelete).Names())

		t.Mock().ScheduleSuccess(transport.MethodDelete, t.Example(keyCancelReservation))
		_, err := t.Client().Delete(t.Context(), "/reservations/RSV_A7K9M2X8", nil)
		require.NoError(t, err)
		assert.Equal(t, before, t.Client().Chain(transport.MethodDelete).Names())
	})

	t.Run("factory-created client stays wrapped after clearing everything", func(t *T) {
		client := t.Environment().Factory.New()
		before := client.Chain(transport.MethodPatch).Names()

		t.Mock().ClearAll()
		assert.Equal(t, before, client.Chain(transport.MethodPatch).Names())

		t.Mock().ScheduleSuccess(transport.MethodPatch, t.Example(keyUpdateReservation))
		_, err := client.Patch(t.Context(), "/reservations/RSV_A7K9M2X8",
			t.RequestExample(keyUpdateReservation), nil)
		require.NoError(t, err)
		if t.Environment().Config.AuthEnabled() {
			assert.Equal(t, "Bearer "+t.Environment().Config.AccessToken,
				lastCall(t, transport.MethodPatch).Config.Header("Authorization"))
		}
	})
}
