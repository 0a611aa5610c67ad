// Package framework contains the low-level test runner that the contract suite is built on.
//
// There is a general notion of a test context which is similar to Go's *testing.T, allowing
// pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. Each test captures its own debug output, which a TestLogger can
// print when the test fails. Hooks registered with BeforeEach run at the start of every test,
// which is where per-test state such as scheduled mock outcomes gets reset.
//
// The domain-specific code that knows what is being tested is responsible for providing a
// domain-specific test API on top of the test context.
package framework
