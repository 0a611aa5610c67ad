// Package autowrap installs the enabled interceptors on mock-backed clients exactly once,
// and re-installs them whenever a global reset strips them.
package autowrap

import (
	"io"
	"os"
	"sync"

	"github.com/reservekit/api-contract-tests/auth"
	"github.com/reservekit/api-contract-tests/callmetrics"
	"github.com/reservekit/api-contract-tests/calllog"
	"github.com/reservekit/api-contract-tests/config"
	"github.com/reservekit/api-contract-tests/mock"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/fatih/color"
)

// HookName is the name under which a Guard registers its reset hooks.
const HookName = "autowrap"

// Guard owns one instance of each enabled interceptor. Installing through a Guard is
// idempotent per client, and each controller's reset hook is armed at most once.
type Guard struct {
	logger  *calllog.Logger
	auth    *auth.Interceptor
	metrics *callmetrics.Collector
	clients   []*transport.Client
	factories []*transport.Factory
	known     map[*transport.Client]bool
	lock    sync.Mutex
}

// New builds the interceptors enabled by cfg. Call records go to out, or os.Stdout if out
// is nil. The configuration is read here once and never again.
func New(cfg config.Config, out io.Writer) *Guard {
	g := &Guard{known: make(map[*transport.Client]bool)}
	if cfg.LogAutowrap {
		opts := cfg.LoggerOptions()
		if out == nil {
			out = os.Stdout
		}
		opts.Output = out
		opts.Color = out == os.Stdout && !color.NoColor
		g.logger = calllog.New(opts)
	}
	if cfg.AuthEnabled() {
		g.auth = auth.New(cfg.AccessToken)
	}
	return g
}

// WithMetrics adds a call counter to the layers the Guard installs. It must be called
// before the first Install.
func (g *Guard) WithMetrics(c *callmetrics.Collector) *Guard {
	if g != nil {
		g.metrics = c
	}
	return g
}

// Interceptors returns the enabled interceptors.
func (g *Guard) Interceptors() []transport.Interceptor {
	if g == nil {
		return nil
	}
	var ret []transport.Interceptor
	if g.auth != nil {
		ret = append(ret, g.auth)
	}
	if g.logger != nil {
		ret = append(ret, g.logger)
	}
	if g.metrics != nil {
		ret = append(ret, g.metrics)
	}
	return ret
}

// Enabled reports whether the Guard installs anything at all.
func (g *Guard) Enabled() bool {
	return len(g.Interceptors()) > 0
}

// Install wraps each client with the enabled interceptors and arms ctrl's reset hook, so
// that the wrapping survives ClearAll. Nil clients are skipped and a nil controller only
// means there is no hook to arm. It returns the number of clients that changed.
func (g *Guard) Install(ctrl *mock.Controller, clients ...*transport.Client) int {
	if !g.Enabled() {
		return 0
	}
	changed := 0
	for _, c := range clients {
		if c == nil {
			continue
		}
		g.track(c)
		if g.wrap(c) {
			changed++
		}
	}
	ctrl.OnClear(HookName, g.Rearm)
	return changed
}

// InstallFactory registers the enabled interceptors on a factory. Registering on the same
// factory twice has no effect. Clients the factory creates are re-wrapped by Rearm and
// before their first call after a reset. It reports whether anything changed.
func (g *Guard) InstallFactory(f *transport.Factory) bool {
	if f == nil || !g.Enabled() {
		return false
	}
	g.lock.Lock()
	if !containsFactory(g.factories, f) {
		g.factories = append(g.factories, f)
	}
	g.lock.Unlock()
	changed := false
	for _, i := range g.Interceptors() {
		if f.Use(i) {
			changed = true
		}
	}
	return changed
}

// Rearm re-installs the enabled interceptors on every client the Guard has seen, including
// those created by factories it patched. It is the hook run after a controller's ClearAll.
func (g *Guard) Rearm() {
	if g == nil {
		return
	}
	g.lock.Lock()
	clients := append([]*transport.Client(nil), g.clients...)
	factories := append([]*transport.Factory(nil), g.factories...)
	g.lock.Unlock()
	for _, c := range clients {
		g.wrap(c)
	}
	for _, f := range factories {
		f.Rearm()
	}
}

func containsFactory(list []*transport.Factory, f *transport.Factory) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}

func (g *Guard) track(c *transport.Client) {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.known[c] {
		return
	}
	g.known[c] = true
	g.clients = append(g.clients, c)
	// A client reset outside of ClearAll is re-wrapped before its next call.
	c.OnStale(HookName, func(c *transport.Client) { g.wrap(c) })
}

func (g *Guard) wrap(c *transport.Client) bool {
	return c.Install(g.Interceptors()...) > 0
}
