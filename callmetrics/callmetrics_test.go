package callmetrics

import (
	"context"
	"testing"

	"github.com/reservekit/api-contract-tests/mock"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsCallsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	ctrl := mock.New()
	client := ctrl.NewClient()
	require.True(t, c.Install(client))
	assert.False(t, c.Install(client))

	ctrl.ScheduleSuccess(transport.MethodPost, nil)
	ctrl.ScheduleError(transport.MethodPost, 409, map[string]any{"errorCode": "IDEMP_CONFLICT"})
	ctrl.ScheduleNetworkError(transport.MethodPost, "ECONNABORTED", "timeout of 5000ms exceeded")
	for i := 0; i < 3; i++ {
		_, _ = client.Post(context.Background(), "/reservations", nil, nil)
	}
	_, err = client.Get(context.Background(), "/menus", nil)
	assert.ErrorIs(t, err, mock.ErrNoOutcome)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Counter(transport.MethodPost, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Counter(transport.MethodPost, OutcomeErrorResponse)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Counter(transport.MethodPost, OutcomeNetworkError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Counter(transport.MethodGet, OutcomeFailure)))
	assert.Equal(t, 4, testutil.CollectAndCount(reg))
}

func TestOutermostLayer(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	ctrl := mock.New()
	client := ctrl.NewClient()
	client.Install(c)
	assert.Equal(t, transport.LayerMetrics, c.Layer())
	assert.Equal(t, []string{Name}, client.Chain(transport.MethodGet).Names())
}

func TestRegisteringTwiceSharesCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg)
	require.NoError(t, err)
	b, err := New(reg)
	require.NoError(t, err)
	a.Counter(transport.MethodDelete, OutcomeSuccess).Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(b.Counter(transport.MethodDelete, OutcomeSuccess)))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Classify(nil))
	assert.Equal(t, OutcomeNetworkError, Classify(&transport.Error{Code: "ENOTFOUND"}))
	assert.Equal(t, OutcomeErrorResponse, Classify(&transport.Error{Response: &transport.ErrorResponse{Status: 500}}))
	assert.Equal(t, OutcomeFailure, Classify(mock.ErrNoOutcome))
}
