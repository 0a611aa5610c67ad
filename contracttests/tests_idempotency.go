package contracttests

import (
	"net/http"

	"github.com/reservekit/api-contract-tests/transport"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const idempotencyHeader = "Idempotency-Key"

func DoIdempotencyTests(t *T) {
	t.Run("replayed request returns the same reservation", func(t *T) {
		t.Mock().ScheduleStickySuccess(transport.MethodPost, t.Example(keyCreateReservation))
		key := uuid.NewString()
		payload := t.RequestExample(keyCreateReservation)

		first, err := createReservation(t, payload, transport.WithHeader(idempotencyHeader, key))
		require.NoError(t, err)
		second, err := createReservation(t, payload, transport.WithHeader(idempotencyHeader, key))
		require.NoError(t, err)

		assert.Equal(t, "RSV_A7K9M2X8", first.Data.(map[string]any)["reservationId"])
		assert.Equal(t, first.Data, second.Data)

		calls := t.Mock().Calls(transport.MethodPost)
		require.Len(t, calls, 2)
		for _, c := range calls {
			assert.Equal(t, key, c.Config.Header(idempotencyHeader))
		}
	})

	t.Run("reused key with a different payload conflicts", func(t *T) {
		t.Mock().ScheduleSuccess(transport.MethodPost, t.Example(keyCreateReservation))
		t.Mock().ScheduleError(transport.MethodPost, http.StatusConflict,
			t.ErrorExample(keyCreateReservation, http.StatusConflict, "IDEMP_CONFLICT"))
		key := uuid.NewString()

		payload := t.RequestExample(keyCreateReservation)
		_, err := createReservation(t, payload, transport.WithHeader(idempotencyHeader, key))
		require.NoError(t, err)

		payload["partySize"] = 6
		_, err = createReservation(t, payload, transport.WithHeader(idempotencyHeader, key))
		te := t.RequireTransportError(err)
		require.NotNil(t, te.Response)
		assert.Equal(t, http.StatusConflict, te.Response.Status)
		assert.Equal(t, "IDEMP_CONFLICT", te.Response.Data.(map[string]any)["errorCode"])
	})

	t.Run("fresh keys are distinct", func(t *T) {
		t.Mock().ScheduleStickySuccess(transport.MethodPost, t.Example(keyCreateReservation))
		for i := 0; i < 2; i++ {
			_, err := createReservation(t, t.RequestExample(keyCreateReservation),
				transport.WithHeader(idempotencyHeader, uuid.NewString()))
			require.NoError(t, err)
		}
		calls := t.Mock().Calls(transport.MethodPost)
		require.Len(t, calls, 2)
		assert.NotEqual(t, calls[0].Config.Header(idempotencyHeader), calls[1].Config.Header(idempotencyHeader))
	})
}
