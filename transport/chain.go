package transport

import (
	"context"
	"sort"
	"sync"
)

// Layer orders interceptors within a chain. Lower layers are closer to the core.
type Layer int

const (
	LayerAuth    Layer = 10
	LayerLogger  Layer = 20
	LayerMetrics Layer = 30
)

// Interceptor is a named, cross-cutting wrapper around a verb function.
type Interceptor interface {
	// Name identifies the interceptor in a chain's installed set. Two interceptors with the
	// same name are considered the same layer.
	Name() string
	Layer() Layer
	Wrap(method Method, next VerbFunc) VerbFunc
}

// Chain is a single verb function: a core plus zero or more installed interceptors.
type Chain struct {
	method    Method
	core      VerbFunc
	layers    []Interceptor
	installed map[string]bool
	composed  VerbFunc
	lock      sync.RWMutex
}

// NewChain creates a chain with no interceptors.
func NewChain(method Method, core VerbFunc) *Chain {
	c := &Chain{
		method:    method,
		core:      core,
		installed: make(map[string]bool),
	}
	c.composed = core
	return c
}

// Method returns the verb this chain serves.
func (c *Chain) Method() Method {
	return c.method
}

// Install adds an interceptor unless one with the same name is already installed. It
// returns true if the chain changed.
func (c *Chain) Install(i Interceptor) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.installed[i.Name()] {
		return false
	}
	c.installed[i.Name()] = true
	c.layers = append(c.layers, i)
	sort.SliceStable(c.layers, func(a, b int) bool { return c.layers[a].Layer() < c.layers[b].Layer() })
	c.compose()
	return true
}

// Installed reports whether an interceptor with this name is part of the chain.
func (c *Chain) Installed(name string) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.installed[name]
}

// Names returns the installed interceptor names from outermost to innermost.
func (c *Chain) Names() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	ret := make([]string, 0, len(c.layers))
	for i := len(c.layers) - 1; i >= 0; i-- {
		ret = append(ret, c.layers[i].Name())
	}
	return ret
}

// Reset drops every interceptor, leaving only the core.
func (c *Chain) Reset() {
	c.lock.Lock()
	c.layers = nil
	c.installed = make(map[string]bool)
	c.compose()
	c.lock.Unlock()
}

// Call invokes the composed verb function.
func (c *Chain) Call(ctx context.Context, url string, body any, cfg *RequestConfig) (*Response, error) {
	c.lock.RLock()
	fn := c.composed
	c.lock.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, url, body, cfg)
}

func (c *Chain) compose() {
	fn := c.core
	for _, i := range c.layers {
		fn = i.Wrap(c.method, fn)
	}
	c.composed = fn
}
