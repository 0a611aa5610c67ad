package contracttests

import (
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoNetworkErrorTests(t *T) {
	for _, c := range []struct {
		name    string
		code    string
		message string
	}{
		{"timeout", transport.CodeTimeout, "timeout of 5000ms exceeded"},
		{"unreachable network", transport.CodeNetworkUnreachable, "connect ENETUNREACH"},
		{"unknown host", transport.CodeHostNotFound, "getaddrinfo ENOTFOUND api.reservekit.test"},
	} {
		c := c
		t.Run(c.name, func(t *T) {
			t.Mock().ScheduleNetworkError(transport.MethodPost, c.code, c.message)

			_, err := createReservation(t, t.RequestExample(keyCreateReservation), nil)
			te := t.RequireTransportError(err)
			assert.Nil(t, te.Response)
			assert.Equal(t, c.code, te.Code)
			assert.Equal(t, c.message, te.Message)
			assert.Equal(t, 0, te.Status())
		})
	}

	t.Run("a timeout does not consume later outcomes", func(t *T) {
		t.Mock().ScheduleNetworkError(transport.MethodGet, transport.CodeTimeout, "timeout of 5000ms exceeded")
		t.Mock().ScheduleSuccess(transport.MethodGet, t.Example(keyGetReservation))

		_, err := t.Client().Get(t.Context(), "/reservations/RSV_A7K9M2X8", nil)
		assert.True(t, t.RequireTransportError(err).IsNetworkError())

		resp, err := t.Client().Get(t.Context(), "/reservations/RSV_A7K9M2X8", nil)
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", resp.Data.(map[string]any)["status"])
	})
}
