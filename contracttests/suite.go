package contracttests

import (
	"github.com/reservekit/api-contract-tests/apispec"
	"github.com/reservekit/api-contract-tests/framework"
	"github.com/reservekit/api-contract-tests/transport"
)

// Endpoint keys of the contract document used by the suite.
var (
	keyGetMenu           = apispec.Key(transport.MethodGet, "/menus/{menuId}")
	keyCreateReservation = apispec.Key(transport.MethodPost, "/reservations")
	keyGetReservation    = apispec.Key(transport.MethodGet, "/reservations/{reservationId}")
	keyUpdateReservation = apispec.Key(transport.MethodPatch, "/reservations/{reservationId}")
	keyPayReservation    = apispec.Key(transport.MethodPut, "/reservations/{reservationId}/payment")
	keyCancelReservation = apispec.Key(transport.MethodDelete, "/reservations/{reservationId}")
)

// RunTestSuite runs every contract test against an environment.
func RunTestSuite(
	env *Environment,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		c.BeforeEach(func(c *framework.Context) {
			env.Controller.Reset()
			env.Controller.SetLogger(c.DebugLogger())
			env.logOutput.route(debugWriter(c))
		})
		c.Defer(func() {
			env.Controller.SetLogger(nil)
			env.logOutput.route(nil)
		})

		t := newTestScope(c, env)

		t.Run("validation", DoValidationTests)
		t.Run("verbs", DoVerbTests)
		t.Run("idempotency", DoIdempotencyTests)
		t.Run("rate limiting", DoRateLimitTests)
		t.Run("network errors", DoNetworkErrorTests)
		t.Run("authentication", DoAuthTests)
		t.Run("error taxonomy", DoErrorTaxonomyTests)
		t.Run("global reset", DoGlobalResetTests)
		t.Run("stub service", DoStubServiceTests)
	})
}
