package transport

import (
	"context"
	"fmt"
	"sync"
)

// Client is a transport instance exposing the five verbs.
type Client struct {
	chains  map[Method]*Chain
	stale   bool
	onStale []staleHook
	lock    sync.Mutex
}

type staleHook struct {
	name string
	fn   func(*Client)
}

// NewClient builds a client whose chain cores are provided by core.
func NewClient(core func(Method) VerbFunc) *Client {
	c := &Client{chains: make(map[Method]*Chain, len(AllMethods))}
	for _, m := range AllMethods {
		c.chains[m] = NewChain(m, core(m))
	}
	return c
}

// Chain returns the chain for a verb.
func (c *Client) Chain(m Method) *Chain {
	return c.chains[m]
}

// Install installs each interceptor on every verb. It returns the number of chains that
// changed, so a second installation of the same interceptors returns 0.
func (c *Client) Install(interceptors ...Interceptor) int {
	changed := 0
	for _, i := range interceptors {
		for _, m := range AllMethods {
			if c.chains[m].Install(i) {
				changed++
			}
		}
	}
	return changed
}

// Installed reports whether an interceptor is installed on every verb.
func (c *Client) Installed(name string) bool {
	for _, m := range AllMethods {
		if !c.chains[m].Installed(name) {
			return false
		}
	}
	return true
}

// Reset drops every interceptor from every verb and marks the client stale. The next call
// through the client first runs the hooks registered with OnStale.
func (c *Client) Reset() {
	for _, m := range AllMethods {
		c.chains[m].Reset()
	}
	c.lock.Lock()
	c.stale = true
	c.lock.Unlock()
}

// OnStale registers a hook to run before the first dispatch after a Reset. A hook is
// registered at most once per name; the return value is false for a duplicate.
func (c *Client) OnStale(name string, fn func(*Client)) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, h := range c.onStale {
		if h.name == name {
			return false
		}
	}
	c.onStale = append(c.onStale, staleHook{name: name, fn: fn})
	return true
}

// Do dispatches a call to the chain for the given verb.
func (c *Client) Do(ctx context.Context, m Method, url string, body any, cfg *RequestConfig) (*Response, error) {
	chain := c.chains[m]
	if chain == nil {
		return nil, fmt.Errorf("unsupported method %q", m)
	}
	c.lock.Lock()
	var hooks []staleHook
	if c.stale {
		c.stale = false
		hooks = append(hooks, c.onStale...)
	}
	c.lock.Unlock()
	for _, h := range hooks {
		h.fn(c)
	}
	return chain.Call(ctx, url, body, cfg)
}

// Post dispatches a POST call.
func (c *Client) Post(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error) {
	return c.Do(ctx, MethodPost, url, body, cfg)
}

// Get dispatches a GET call.
func (c *Client) Get(ctx context.Context, url string, cfg *RequestConfig) (*Response, error) {
	return c.Do(ctx, MethodGet, url, nil, cfg)
}

// Put dispatches a PUT call.
func (c *Client) Put(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error) {
	return c.Do(ctx, MethodPut, url, body, cfg)
}

// Delete dispatches a DELETE call.
func (c *Client) Delete(ctx context.Context, url string, cfg *RequestConfig) (*Response, error) {
	return c.Do(ctx, MethodDelete, url, nil, cfg)
}

// Patch dispatches a PATCH call.
func (c *Client) Patch(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error) {
	return c.Do(ctx, MethodPatch, url, body, cfg)
}

// FactoryHook is the OnStale hook name under which a Factory re-installs its interceptors.
const FactoryHook = "factory"

// Factory creates new clients, installing its registered interceptors on each one. A
// client it created that is later reset gets the interceptors back before its next call.
type Factory struct {
	build        func() *Client
	interceptors []Interceptor
	names        map[string]bool
	clients      []*Client
	lock         sync.Mutex
}

// NewFactory wraps a function that builds bare clients.
func NewFactory(build func() *Client) *Factory {
	return &Factory{build: build, names: make(map[string]bool)}
}

// Use registers an interceptor for every client created from now on. Registering a name
// twice is a no-op that returns false.
func (f *Factory) Use(i Interceptor) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.names[i.Name()] {
		return false
	}
	f.names[i.Name()] = true
	f.interceptors = append(f.interceptors, i)
	return true
}

// Patched reports whether an interceptor with this name is registered.
func (f *Factory) Patched(name string) bool {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.names[name]
}

// New creates a client with every registered interceptor installed.
func (f *Factory) New() *Client {
	c := f.build()
	f.lock.Lock()
	f.clients = append(f.clients, c)
	f.lock.Unlock()
	c.OnStale(FactoryHook, func(c *Client) { f.install(c) })
	f.install(c)
	return c
}

// Rearm re-installs the registered interceptors on every client the factory created. It
// returns the number of clients that changed.
func (f *Factory) Rearm() int {
	if f == nil {
		return 0
	}
	f.lock.Lock()
	clients := append([]*Client{}, f.clients...)
	f.lock.Unlock()
	changed := 0
	for _, c := range clients {
		if f.install(c) {
			changed++
		}
	}
	return changed
}

func (f *Factory) install(c *Client) bool {
	f.lock.Lock()
	interceptors := append([]Interceptor{}, f.interceptors...)
	f.lock.Unlock()
	return c.Install(interceptors...) > 0
}
