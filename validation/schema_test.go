package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reservationSchema = `{
  "type": "object",
  "required": ["reservationId", "status"],
  "properties": {
    "reservationId": {"type": "string", "pattern": "^RSV_[A-Z0-9]{8}$"},
    "status": {"enum": ["CONFIRMED", "PENDING"]},
    "partySize": {"type": "integer", "minimum": 1}
  }
}`

func TestShapeValidate(t *testing.T) {
	shape, err := CompileSchema("reservation", []byte(reservationSchema))
	require.NoError(t, err)

	assert.NoError(t, shape.Validate(map[string]any{"reservationId": "RSV_A7K9M2X8", "status": "CONFIRMED", "partySize": 2}))
	assert.NoError(t, shape.Validate(json.RawMessage(`{"reservationId":"RSV_A7K9M2X8","status":"PENDING"}`)))

	type body struct {
		ReservationID string `json:"reservationId"`
		Status        string `json:"status"`
	}
	assert.NoError(t, shape.Validate(body{ReservationID: "RSV_A7K9M2X8", Status: "CONFIRMED"}))

	err = shape.Validate(map[string]any{"reservationId": "nope", "status": "CONFIRMED"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reservation")

	assert.Error(t, shape.Validate(map[string]any{"reservationId": "RSV_A7K9M2X8"}))
	assert.Error(t, shape.Validate(map[string]any{"reservationId": "RSV_A7K9M2X8", "status": "PENDING", "partySize": 1.5}))
}

func TestCompileSchemaValue(t *testing.T) {
	shape, err := CompileSchemaValue("error", map[string]any{
		"type":     "object",
		"required": []any{"errorCode"},
	})
	require.NoError(t, err)
	assert.NoError(t, shape.Validate(map[string]any{"errorCode": "MENU_NOT_FOUND"}))
	assert.Error(t, shape.Validate(map[string]any{}))
}

func TestCompileSchemaRejectsMalformedJSON(t *testing.T) {
	_, err := CompileSchema("garbage", []byte(`{`))
	assert.Error(t, err)
}
