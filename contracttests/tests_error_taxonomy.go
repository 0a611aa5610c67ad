package contracttests

import (
	"net/http"

	"github.com/reservekit/api-contract-tests/mock"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func DoErrorTaxonomyTests(t *T) {
	for _, c := range []struct {
		name   string
		key    string
		method transport.Method
		url    string
		status int
		code   string
	}{
		{"unknown menu", keyGetMenu, transport.MethodGet, "/menus/MENU_9999", http.StatusNotFound, "MENU_NOT_FOUND"},
		{"unknown reservation", keyGetReservation, transport.MethodGet, "/reservations/RSV_00000000",
			http.StatusNotFound, "RESERVATION_NOT_FOUND"},
		{"expired hold on update", keyUpdateReservation, transport.MethodPatch, "/reservations/RSV_A7K9M2X8",
			http.StatusUnprocessableEntity, "RESERVATION_EXPIRED"},
		{"expired hold on cancel", keyCancelReservation, transport.MethodDelete, "/reservations/RSV_A7K9M2X8",
			http.StatusUnprocessableEntity, "RESERVATION_EXPIRED"},
		{"payment forbidden", keyPayReservation, transport.MethodPut, "/reservations/RSV_A7K9M2X8/payment",
			http.StatusForbidden, "PAYMENT_FORBIDDEN"},
	} {
		c := c
		t.Run(c.name, func(t *T) {
			body := t.ErrorExample(c.key, c.status, c.code)
			t.Mock().ScheduleError(c.method, c.status, body)

			_, err := t.Client().Do(t.Context(), c.method, c.url, nil, nil)
			te := t.RequireTransportError(err)
			require.NotNil(t, te.Response)
			assert.Equal(t, c.status, te.Response.Status)
			assert.Equal(t, body, te.Response.Data)
			assert.Equal(t, c.code, te.Response.Data.(map[string]any)["errorCode"])
		})
	}

	t.Run("error meta overrides code and message", func(t *T) {
		t.Mock().ScheduleError(transport.MethodGet, http.StatusNotFound,
			t.ErrorExample(keyGetMenu, http.StatusNotFound, "MENU_NOT_FOUND"),
			mock.ErrorMeta{Code: "ERR_BAD_REQUEST", Message: "menu lookup failed"})

		_, err := t.Client().Get(t.Context(), "/menus/MENU_9999", nil)
		te := t.RequireTransportError(err)
		assert.Equal(t, "ERR_BAD_REQUEST", te.Code)
		assert.Equal(t, "menu lookup failed", te.Message)
		assert.Equal(t, http.StatusNotFound, te.Status())
	})

	t.Run("success examples match their documented shape", func(t *T) {
		t.Mock().ScheduleSuccess(transport.MethodPost, t.Example(keyCreateReservation))
		t.Mock().ScheduleSuccess(transport.MethodGet, t.Example(keyGetMenu))

		created, err := createReservation(t, t.RequestExample(keyCreateReservation), nil)
		require.NoError(t, err)
		t.RequireShape(keyCreateReservation, http.StatusCreated, created.Data)

		menu, err := t.Client().Get(t.Context(), "/menus/MENU_0001", nil)
		require.NoError(t, err)
		t.RequireShape(keyGetMenu, http.StatusOK, menu.Data)
	})
}
