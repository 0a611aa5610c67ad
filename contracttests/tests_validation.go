package contracttests

import (
	"github.com/reservekit/api-contract-tests/transport"
	"github.com/reservekit/api-contract-tests/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reservationRules are the client-side rules for a reservation request.
var reservationRules = validation.Rules{
	Required: []string{"menuId", "partySize", "date", "customer.name"},
	Ranges: []validation.Range{
		{Field: "partySize", Min: validation.Bound(1), Max: validation.Bound(12), Integer: true},
		{Field: "deposit", Min: validation.Bound(0)},
	},
}

type reservationRequest struct {
	MenuID    string  `json:"menuId" validate:"required"`
	PartySize int     `json:"partySize" validate:"min=1,max=12"`
	Date      string  `json:"date" validate:"required"`
	Deposit   float64 `json:"deposit" validate:"gte=0"`
}

// createReservation validates a payload and, only if it passes, sends it.
func createReservation(t *T, payload any, cfg *transport.RequestConfig) (*transport.Response, error) {
	if err := validation.Check(payload, reservationRules); err != nil {
		return nil, err
	}
	return t.Client().Post(t.Context(), "/reservations", payload, cfg)
}

func DoValidationTests(t *T) {
	t.Run("documented request example passes and is sent", func(t *T) {
		t.Mock().ScheduleSuccess(transport.MethodPost, t.Example(keyCreateReservation))

		resp, err := createReservation(t, t.RequestExample(keyCreateReservation), nil)
		require.NoError(t, err)
		assert.Equal(t, "RSV_A7K9M2X8", resp.Data.(map[string]any)["reservationId"])
		assert.Equal(t, 1, t.Mock().CallCount(transport.MethodPost))
	})

	for _, c := range []struct {
		name   string
		change func(map[string]any)
		rule   string
		field  string
	}{
		{"party size below minimum", func(p map[string]any) { p["partySize"] = 0 }, validation.RuleMin, "partySize"},
		{"party size above maximum", func(p map[string]any) { p["partySize"] = 13 }, validation.RuleMax, "partySize"},
		{"fractional party size", func(p map[string]any) { p["partySize"] = 2.5 }, validation.RuleInteger, "partySize"},
		{"non-numeric party size", func(p map[string]any) { p["partySize"] = "four" }, validation.RuleType, "partySize"},
		{"negative deposit", func(p map[string]any) { p["deposit"] = -1 }, validation.RuleMin, "deposit"},
		{"missing menu", func(p map[string]any) { delete(p, "menuId") }, validation.RuleRequired, "menuId"},
		{"missing customer name", func(p map[string]any) {
			delete(p["customer"].(map[string]any), "name")
		}, validation.RuleRequired, "customer.name"},
	} {
		c := c
		t.Run(c.name+" is rejected before sending", func(t *T) {
			payload := t.RequestExample(keyCreateReservation)
			c.change(payload)

			_, err := createReservation(t, payload, nil)
			ve := t.RequireValidationError(err)
			assert.Equal(t, c.rule, ve.Rule)
			assert.Equal(t, c.field, ve.Field)
			assert.NotEmpty(t, ve.Reason)
			assert.Equal(t, 0, t.Mock().CallCount(transport.MethodPost))
		})
	}

	t.Run("struct payloads use the same rules", func(t *T) {
		err := validation.CheckStruct(reservationRequest{MenuID: "MENU_0001", PartySize: 0, Date: "2026-11-20"})
		ve := t.RequireValidationError(err)
		assert.Equal(t, validation.RuleMin, ve.Rule)
		assert.Equal(t, "partySize", ve.Field)

		assert.NoError(t, validation.CheckStruct(reservationRequest{MenuID: "MENU_0001", PartySize: 2, Date: "2026-11-20"}))
		assert.Equal(t, 0, t.Mock().CallCount(transport.MethodPost))
	})
}
