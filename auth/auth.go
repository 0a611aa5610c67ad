// Package auth provides the interceptor that attaches a bearer credential to every verb
// call that does not already carry one.
package auth

import (
	"context"
	"strings"

	"github.com/reservekit/api-contract-tests/transport"
)

// Name is the interceptor name of the credential injector.
const Name = "auth"

// SkipHeader, when set to "true" on a call's config, suppresses injection. Tests use it to
// simulate a caller that forgot to authenticate.
const SkipHeader = "X-Skip-Auth"

// Interceptor injects "Authorization: Bearer <token>" into calls without credentials.
type Interceptor struct {
	token string
}

// New creates an Interceptor for a token.
func New(token string) *Interceptor {
	return &Interceptor{token: token}
}

func (a *Interceptor) Name() string { return Name }

func (a *Interceptor) Layer() transport.Layer { return transport.LayerAuth }

func (a *Interceptor) Wrap(method transport.Method, next transport.VerbFunc) transport.VerbFunc {
	return func(ctx context.Context, url string, body any, cfg *transport.RequestConfig) (*transport.Response, error) {
		if HasCredentials(cfg) || SkipRequested(cfg) {
			return next(ctx, url, body, cfg)
		}
		injected := cfg.Clone()
		injected.Headers.Set("Authorization", "Bearer "+a.token)
		return next(ctx, url, body, injected)
	}
}

// HasCredentials reports whether a config already carries an Authorization header, in any
// casing.
func HasCredentials(cfg *transport.RequestConfig) bool {
	if cfg == nil {
		return false
	}
	for k, vv := range cfg.Headers {
		if strings.EqualFold(k, "Authorization") && len(vv) > 0 {
			return true
		}
	}
	return false
}

// SkipRequested reports whether a config opts out of credential injection.
func SkipRequested(cfg *transport.RequestConfig) bool {
	if cfg == nil {
		return false
	}
	for k, vv := range cfg.Headers {
		if strings.EqualFold(k, SkipHeader) {
			for _, v := range vv {
				if strings.EqualFold(strings.TrimSpace(v), "true") {
					return true
				}
			}
		}
	}
	return false
}

// Install wraps every verb of a client with credential injection. It does nothing if the
// token is empty, the client is nil, or the client is already wrapped, and reports whether
// anything changed.
func Install(c *transport.Client, token string) bool {
	if token == "" || c == nil {
		return false
	}
	return c.Install(New(token)) > 0
}

// InstallOnCreate makes every client created by the factory inject credentials. It does
// nothing if the token is empty, the factory is nil, or the factory is already patched.
func InstallOnCreate(f *transport.Factory, token string) bool {
	if token == "" || f == nil {
		return false
	}
	return f.Use(New(token))
}
