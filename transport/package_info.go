// Package transport defines the verb-function surface that contract tests call, and the
// interceptor chains that wrap it.
//
// The general model is:
//
// 1. Each HTTP verb (POST, GET, PUT, DELETE, PATCH) is a VerbFunc. At the center of every
// verb is a core function: in tests this is a stand-in from the mock package, and when the
// harness talks to a real handler it is built by NewHTTPCore.
//
// 2. Cross-cutting behavior such as credential injection and call logging is added by
// Interceptors. A Chain keeps an explicit set of installed interceptor names, so installing
// the same interceptor twice leaves exactly one layer of interception.
//
// 3. Interceptors are composed by Layer rather than by the order in which they were
// installed: the lowest layer sits closest to the core.
package transport
