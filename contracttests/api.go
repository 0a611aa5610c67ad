package contracttests

import (
	"context"
	"io"

	"github.com/reservekit/api-contract-tests/calllog"
	"github.com/reservekit/api-contract-tests/framework"
	"github.com/reservekit/api-contract-tests/mock"
	"github.com/reservekit/api-contract-tests/transport"
	"github.com/reservekit/api-contract-tests/validation"

	"github.com/stretchr/testify/require"
)

// T represents a test or subtest in the contract suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner, and with extra features such as debug logging that are
// provided by the lower-level framework package.
//
// It also gives access to the mock controller and the wrapped client that every test shares.
// The controller's schedule and call records are cleared before each test starts, so a test
// never sees outcomes left over from another one.
//
// To make test assertions, use the assert and require packages, passing the *T as if it were
// a *testing.T.
type T struct {
	context *framework.Context
	env     *Environment
	ctx     context.Context
}

func newTestScope(c *framework.Context, env *Environment) *T {
	return &T{
		context: c,
		env:     env,
		ctx:     calllog.WithTestPath(context.Background(), c.ID().Path...),
	}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Defer schedules a function to run when the test ends.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// SkipWithReason stops the test and reports it as skipped.
func (t *T) SkipWithReason(reason string) {
	t.context.SkipWithReason(reason)
}

// Context returns the context to pass to client calls. It carries the test's name, so that
// call records can be attributed to it.
func (t *T) Context() context.Context {
	return t.ctx
}

// Mock returns the controller that decides the outcome of every call.
func (t *T) Mock() *mock.Controller {
	return t.env.Controller
}

// Client returns the wrapped client.
func (t *T) Client() *transport.Client {
	return t.env.Client
}

// Stub returns the wrapped client of the in-process HTTP stub service.
func (t *T) Stub() *transport.Client {
	return t.env.Stub
}

// Environment returns the state shared by the whole run.
func (t *T) Environment() *Environment {
	return t.env
}

// Example returns a copy of the success example of an endpoint, failing the test if the
// document does not have one.
func (t *T) Example(key string) map[string]any {
	body, err := t.env.Document.SuccessExample(key)
	require.NoError(t, err)
	return copyObject(t, body)
}

// RequestExample returns a copy of the request body example of an endpoint.
func (t *T) RequestExample(key string) map[string]any {
	body, err := t.env.Document.RequestExample(key)
	require.NoError(t, err)
	return copyObject(t, body)
}

// ErrorExample returns a copy of the documented body for an application error code.
func (t *T) ErrorExample(key string, status int, errorCode string) map[string]any {
	body, err := t.env.Document.ErrorExample(key, status, errorCode)
	require.NoError(t, err)
	return copyObject(t, body)
}

// RequireShape checks a body against the schema documented for a status.
func (t *T) RequireShape(key string, status int, body any) {
	shape, err := t.env.Document.ResponseSchema(key, status)
	require.NoError(t, err)
	require.NoError(t, shape.Validate(body))
}

// RequireTransportError asserts that err is a transport error and returns it.
func (t *T) RequireTransportError(err error) *transport.Error {
	require.Error(t, err)
	te, ok := transport.AsError(err)
	require.True(t, ok, "expected a transport error, got %T: %s", err, err)
	return te
}

// RequireValidationError asserts that err is a client-side validation error and returns it.
func (t *T) RequireValidationError(err error) *validation.Error {
	require.Error(t, err)
	ve, ok := validation.AsError(err)
	require.True(t, ok, "expected a validation error, got %T: %s", err, err)
	_, isTransport := transport.AsError(err)
	require.False(t, isTransport, "validation errors must not look like transport errors")
	return ve
}

func copyObject(t *T, body any) map[string]any {
	m, ok := body.(map[string]any)
	require.True(t, ok, "expected an object example, got %T", body)
	ret := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = copyObject(t, nested)
		}
		ret[k] = v
	}
	return ret
}

func debugWriter(c *framework.Context) io.Writer {
	if w, ok := c.DebugLogger().(io.Writer); ok {
		return w
	}
	return io.Discard
}

var _ require.TestingT = (*T)(nil)
