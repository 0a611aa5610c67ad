package contracttests

import (
	"github.com/reservekit/api-contract-tests/mock"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callVerb(t *T, m transport.Method, body any) (*transport.Response, error) {
	return t.Client().Do(t.Context(), m, "/reservations/RSV_A7K9M2X8", body, nil)
}

func DoVerbTests(t *T) {
	for _, m := range transport.AllMethods {
		m := m
		t.Run(string(m), func(t *T) {
			t.Run("one-shot success is returned once", func(t *T) {
				body := map[string]any{"verb": string(m)}
				t.Mock().ScheduleSuccess(m, body)

				resp, err := callVerb(t, m, nil)
				require.NoError(t, err)
				assert.Equal(t, body, resp.Data)

				_, err = callVerb(t, m, nil)
				assert.ErrorIs(t, err, mock.ErrNoOutcome)
				assert.Equal(t, 2, t.Mock().CallCount(m))
			})

			t.Run("sticky success is returned every time", func(t *T) {
				t.Mock().ScheduleStickySuccess(m, "always")
				for i := 0; i < 3; i++ {
					resp, err := callVerb(t, m, nil)
					require.NoError(t, err)
					assert.Equal(t, "always", resp.Data)
				}
			})

			t.Run("one-shot outcomes take precedence over sticky", func(t *T) {
				t.Mock().ScheduleStickySuccess(m, "fallback")
				t.Mock().ScheduleSuccess(m, "first")
				t.Mock().ScheduleError(m, 500, map[string]any{"errorCode": "INTERNAL"})

				resp, err := callVerb(t, m, nil)
				require.NoError(t, err)
				assert.Equal(t, "first", resp.Data)

				_, err = callVerb(t, m, nil)
				assert.Equal(t, 500, t.RequireTransportError(err).Status())

				resp, err = callVerb(t, m, nil)
				require.NoError(t, err)
				assert.Equal(t, "fallback", resp.Data)
			})

			t.Run("error response carries status and body", func(t *T) {
				body := map[string]any{"errorCode": "CONFLICT"}
				t.Mock().ScheduleError(m, 409, body)

				_, err := callVerb(t, m, nil)
				te := t.RequireTransportError(err)
				require.NotNil(t, te.Response)
				assert.Equal(t, 409, te.Response.Status)
				assert.Equal(t, body, te.Response.Data)
				assert.False(t, te.IsNetworkError())
			})

			t.Run("network error has no response", func(t *T) {
				t.Mock().ScheduleNetworkError(m, "ENETUNREACH", "network unreachable")

				_, err := callVerb(t, m, nil)
				te := t.RequireTransportError(err)
				assert.Nil(t, te.Response)
				assert.Equal(t, "ENETUNREACH", te.Code)
				assert.True(t, te.IsNetworkError())
			})

			if m.HasBody() {
				t.Run("request body is recorded", func(t *T) {
					t.Mock().ScheduleSuccess(m, nil)
					_, err := callVerb(t, m, map[string]any{"partySize": 2})
					require.NoError(t, err)
					calls := t.Mock().Calls(m)
					require.Len(t, calls, 1)
					assert.Equal(t, map[string]any{"partySize": 2}, calls[0].Body)
				})
			}
		})
	}
}
