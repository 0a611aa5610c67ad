// Package contracttests contains the reservation API contract tests and their supporting API.
//
// Every test runs against a mock controller whose stand-in verbs are wrapped by the same
// interceptors a real client would use: credential injection, call logging and, optionally,
// call metrics. Test bodies schedule outcomes on the controller, call the client, and assert
// on what comes back. Literal request and response bodies come from the API contract
// document rather than being written inline.
//
// The test runner itself, which knows nothing about the API, is in the framework package.
package contracttests
