// Package mock provides the scripted stand-ins that sit at the core of every transport chain
// in the contract tests. Test bodies schedule outcomes per verb and then assert on what the
// verb returned and on the calls the stand-in recorded.
package mock
