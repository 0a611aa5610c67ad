// Package callmetrics counts verb calls by outcome with a prometheus counter. It is the
// outermost interceptor layer, so it sees every call exactly as the test made it.
package callmetrics

import (
	"context"

	"github.com/reservekit/api-contract-tests/transport"

	"github.com/prometheus/client_golang/prometheus"
)

// Name is the interceptor name of the call counter.
const Name = "metrics"

// Outcome label values.
const (
	OutcomeSuccess       = "success"
	OutcomeErrorResponse = "error_response"
	OutcomeNetworkError  = "network_error"
	OutcomeFailure       = "failure"
)

// Collector is a transport interceptor that increments api_contract_calls_total.
type Collector struct {
	calls *prometheus.CounterVec
}

// New creates a Collector and registers its counter. A nil registerer leaves the counter
// unregistered, which is useful in tests that read it directly.
func New(reg prometheus.Registerer) (*Collector, error) {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "api_contract",
		Name:      "calls_total",
		Help:      "Verb calls made through wrapped clients, by method and outcome.",
	}, []string{"method", "outcome"})
	if reg != nil {
		if err := reg.Register(calls); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
					return &Collector{calls: existing}, nil
				}
			}
			return nil, err
		}
	}
	return &Collector{calls: calls}, nil
}

func (c *Collector) Name() string { return Name }

func (c *Collector) Layer() transport.Layer { return transport.LayerMetrics }

func (c *Collector) Wrap(method transport.Method, next transport.VerbFunc) transport.VerbFunc {
	return func(ctx context.Context, url string, body any, cfg *transport.RequestConfig) (*transport.Response, error) {
		resp, err := next(ctx, url, body, cfg)
		c.calls.WithLabelValues(string(method), Classify(err)).Inc()
		return resp, err
	}
}

// Install installs the collector on a client, reporting whether anything changed.
func (c *Collector) Install(client *transport.Client) bool {
	if c == nil || client == nil {
		return false
	}
	return client.Install(c) > 0
}

// Counter returns the counter for one method and outcome.
func (c *Collector) Counter(method transport.Method, outcome string) prometheus.Counter {
	return c.calls.WithLabelValues(string(method), outcome)
}

// Classify maps a call result to an outcome label.
func Classify(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	te, ok := transport.AsError(err)
	switch {
	case !ok:
		return OutcomeFailure
	case te.IsNetworkError():
		return OutcomeNetworkError
	default:
		return OutcomeErrorResponse
	}
}
