package mock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/reservekit/api-contract-tests/framework"
	"github.com/reservekit/api-contract-tests/transport"

	"github.com/eapache/queue"
)

// ErrNoOutcome is returned by a stand-in verb that has nothing scheduled.
var ErrNoOutcome = errors.New("no outcome scheduled")

// Call records the arguments of one invocation of a stand-in verb.
type Call struct {
	URL    string
	Body   any
	Config *transport.RequestConfig
}

type verbState struct {
	oneShot *queue.Queue
	sticky  *Outcome
	calls   []Call
}

func newVerbState() *verbState {
	return &verbState{oneShot: queue.New()}
}

// Controller provides programmable stand-ins for the five verbs.
//
// Each verb has a FIFO queue of one-shot outcomes and an optional sticky outcome. A call
// consumes the oldest one-shot outcome; once the queue is empty, the sticky outcome (if any)
// is returned on every call. A call with neither fails with ErrNoOutcome.
//
// All methods are safe to call on a nil *Controller, in which case they do nothing. This
// lets setup code run unchanged where no controller has been created.
type Controller struct {
	verbs      map[transport.Method]*verbState
	clients    []*transport.Client
	clearHooks []clearHook
	logger     framework.Logger
	lock       sync.Mutex
}

type clearHook struct {
	name string
	fn   func()
}

// New creates a Controller with nothing scheduled.
func New() *Controller {
	c := &Controller{
		verbs:  make(map[transport.Method]*verbState, len(transport.AllMethods)),
		logger: framework.NullLogger(),
	}
	for _, m := range transport.AllMethods {
		c.verbs[m] = newVerbState()
	}
	return c
}

// SetLogger directs the controller's debug output. A nil logger discards it.
func (c *Controller) SetLogger(logger framework.Logger) {
	if c == nil {
		return
	}
	if logger == nil {
		logger = framework.NullLogger()
	}
	c.lock.Lock()
	c.logger = logger
	c.lock.Unlock()
}

// Schedule adds an outcome for a verb. A sticky outcome replaces any previous sticky outcome.
func (c *Controller) Schedule(m transport.Method, o Outcome) {
	if c == nil {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	v := c.verbs[m]
	if v == nil {
		return
	}
	if o.Sticky {
		v.sticky = &o
	} else {
		v.oneShot.Add(o)
	}
	c.logger.Printf("[mock] scheduled %s for %s (sticky=%t)", o.Kind, m, o.Sticky)
}

// ScheduleSuccess makes the next call to the verb resolve with a 200 response whose data is body.
func (c *Controller) ScheduleSuccess(m transport.Method, body any) {
	c.Schedule(m, Outcome{Kind: Success, Body: body})
}

// ScheduleStickySuccess makes every call to the verb resolve with body once the one-shot
// queue is exhausted.
func (c *Controller) ScheduleStickySuccess(m transport.Method, body any) {
	c.Schedule(m, Outcome{Kind: Success, Body: body, Sticky: true})
}

// ScheduleError makes the next call to the verb fail with an HTTP error response.
func (c *Controller) ScheduleError(m transport.Method, status int, body any, meta ...ErrorMeta) {
	o := Outcome{Kind: ErrorResponse, Status: status, Body: body}
	for _, md := range meta {
		if len(md.Headers) > 0 {
			if o.Headers == nil {
				o.Headers = make(http.Header)
			}
			for k, v := range md.Headers {
				o.Headers.Set(k, v)
			}
		}
		if md.Code != "" {
			o.Code = md.Code
		}
		if md.Message != "" {
			o.Message = md.Message
		}
	}
	c.Schedule(m, o)
}

// ScheduleNetworkError makes the next call to the verb fail without a response, as if the
// connection timed out or the host could not be reached.
func (c *Controller) ScheduleNetworkError(m transport.Method, code, message string) {
	c.Schedule(m, Outcome{Kind: NetworkError, Code: code, Message: message})
}

// Verb returns the stand-in function for a verb.
func (c *Controller) Verb(m transport.Method) transport.VerbFunc {
	return func(ctx context.Context, url string, body any, cfg *transport.RequestConfig) (*transport.Response, error) {
		return c.invoke(m, url, body, cfg)
	}
}

func (c *Controller) invoke(m transport.Method, url string, body any, cfg *transport.RequestConfig) (*transport.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("%s %s: %w", m, url, ErrNoOutcome)
	}
	c.lock.Lock()
	v := c.verbs[m]
	v.calls = append(v.calls, Call{URL: url, Body: body, Config: cfg})
	var o *Outcome
	if v.oneShot.Length() > 0 {
		next := v.oneShot.Remove().(Outcome)
		o = &next
	} else if v.sticky != nil {
		o = v.sticky
	}
	logger := c.logger
	c.lock.Unlock()

	if o == nil {
		logger.Printf("[mock] %s %s: nothing scheduled", m, url)
		return nil, fmt.Errorf("%s %s: %w", m, url, ErrNoOutcome)
	}
	logger.Printf("[mock] %s %s -> %s", m, url, o.Kind)
	return o.resolve()
}

// Calls returns the recorded invocations of a verb, oldest first.
func (c *Controller) Calls(m transport.Method) []Call {
	if c == nil {
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	v := c.verbs[m]
	if v == nil {
		return nil
	}
	return append([]Call(nil), v.calls...)
}

// CallCount returns how many times a verb has been invoked.
func (c *Controller) CallCount(m transport.Method) int {
	return len(c.Calls(m))
}

// Pending returns the number of one-shot outcomes not yet consumed for a verb.
func (c *Controller) Pending(m transport.Method) int {
	if c == nil {
		return 0
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.verbs[m].oneShot.Length()
}

// Reset clears every queue, sticky outcome and call record. It is meant to run before
// each test.
func (c *Controller) Reset() {
	if c == nil {
		return
	}
	c.lock.Lock()
	for _, m := range transport.AllMethods {
		c.verbs[m] = newVerbState()
	}
	c.lock.Unlock()
}

// NewClient builds a transport client whose verbs are this controller's stand-ins. The
// controller keeps track of the client so that ClearAll can reset it.
func (c *Controller) NewClient() *transport.Client {
	if c == nil {
		return nil
	}
	client := transport.NewClient(c.Verb)
	c.lock.Lock()
	c.clients = append(c.clients, client)
	c.lock.Unlock()
	return client
}

// NewFactory returns a factory of clients built by NewClient.
func (c *Controller) NewFactory() *transport.Factory {
	if c == nil {
		return nil
	}
	return transport.NewFactory(c.NewClient)
}

// ClearAll is the global reset: it does everything Reset does, strips every interceptor
// from the clients this controller built, and then runs the hooks registered with OnClear.
func (c *Controller) ClearAll() {
	if c == nil {
		return
	}
	c.Reset()
	c.lock.Lock()
	clients := append([]*transport.Client(nil), c.clients...)
	hooks := append([]clearHook(nil), c.clearHooks...)
	c.lock.Unlock()

	for _, client := range clients {
		client.Reset()
	}
	for _, h := range hooks {
		h.fn()
	}
}

// OnClear registers a hook that runs after every ClearAll. Each name can be registered
// only once; a duplicate registration returns false and is ignored.
func (c *Controller) OnClear(name string, fn func()) bool {
	if c == nil {
		return false
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, h := range c.clearHooks {
		if h.name == name {
			return false
		}
	}
	c.clearHooks = append(c.clearHooks, clearHook{name: name, fn: fn})
	return true
}
