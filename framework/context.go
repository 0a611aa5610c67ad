package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	beforeEach []func(*Context)
	lock       sync.Mutex
}

// Context is the state of one test or subtest. It implements the same basic functionality as
// Go's testing.T, so it can be passed to the assert and require packages.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	deferred    []func()
}

// Run runs a root test action and returns the accumulated results of it and every subtest.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.testLogger.TestError(c.id, addError)
				}
			}
		}
		for i := len(c.deferred) - 1; i >= 0; i-- {
			c.deferred[i]()
		}
		if len(c.id.Path) == 0 {
			return
		}
		result := TestResult{TestID: c.id, Errors: c.errors, Skipped: c.skipped}
		c.env.lock.Lock()
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
		c.env.lock.Unlock()
	}()

	c.env.lock.Lock()
	hooks := append([]func(*Context){}, c.env.beforeEach...)
	c.env.lock.Unlock()
	if len(c.id.Path) > 0 {
		for _, h := range hooks {
			h(c)
		}
	}

	action(c)
}

// ID returns the full identifier of the test.
func (c *Context) ID() TestID {
	return c.id
}

// BeforeEach registers a hook that runs at the start of every test started after this call,
// before the test's own action.
func (c *Context) BeforeEach(hook func(*Context)) {
	c.env.lock.Lock()
	c.env.beforeEach = append(c.env.beforeEach, hook)
	c.env.lock.Unlock()
}

// Run runs a subtest.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

// Defer schedules a cleanup function to run when the test ends, whether or not it failed.
// Deferred functions run in reverse order.
func (c *Context) Defer(fn func()) {
	c.deferred = append(c.deferred, fn)
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

// FailNow stops the test immediately.
func (c *Context) FailNow() {
	panic(c)
}

// Failed reports whether the test has failed so far.
func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug adds a line to the test's captured debug output.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
