package framework

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTestLogger struct {
	events []string
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, "start "+id.String())
}

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String())
}

func (r *recordingTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	if failed {
		r.events = append(r.events, "failed "+id.String())
	} else {
		r.events = append(r.events, "passed "+id.String())
	}
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skipped "+id.String()+": "+reason)
}

func TestRunCollectsResults(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("a", func(c *Context) {})
		c.Run("b", func(c *Context) {
			c.Errorf("bad %d", 1)
		})
		c.Run("c", func(c *Context) {
			c.SkipWithReason("not today")
		})
		c.Run("d", func(c *Context) {
			require.Fail(c, "stop")
			c.Errorf("not reached")
		})
	})

	assert.False(t, results.OK())
	passed, failed, skipped := results.Counts()
	assert.Equal(t, 1, passed)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 1, skipped)
	require.Len(t, results.Failures, 2)
	assert.Equal(t, "b", results.Failures[0].TestID.String())
	assert.EqualError(t, results.Failures[0].Errors[0], "bad 1")
	assert.Len(t, results.Failures[1].Errors, 1)
	assert.Contains(t, logger.events, "skipped c: not today")
}

func TestUnexpectedPanicFailsTest(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) {
			panic("oops")
		})
	})
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "unexpected panic in test: oops")
}

func TestBeforeEachRunsForEverySubtest(t *testing.T) {
	var seen []string
	Run(nil, nil, func(c *Context) {
		c.BeforeEach(func(c *Context) {
			seen = append(seen, "hook "+c.ID().String())
		})
		c.Run("outer", func(c *Context) {
			seen = append(seen, "body outer")
			c.Run("inner", func(c *Context) {
				seen = append(seen, "body inner")
			})
		})
	})
	assert.Equal(t, []string{"hook outer", "body outer", "hook outer/inner", "body inner"}, seen)
}

func TestDeferredFunctionsRunInReverseEvenOnFailure(t *testing.T) {
	var order []int
	Run(nil, nil, func(c *Context) {
		c.Run("x", func(c *Context) {
			c.Defer(func() { order = append(order, 1) })
			c.Defer(func() { order = append(order, 2) })
			c.FailNow()
		})
	})
	assert.Equal(t, []int{2, 1}, order)
}

func TestFilterSkipsTests(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("^skip"))
	ran := false
	logger := &recordingTestLogger{}
	Run(filters.AsFilter, logger, func(c *Context) {
		c.Run("skip me", func(c *Context) { ran = true })
	})
	assert.False(t, ran)
	assert.Contains(t, logger.events, "skipped skip me: excluded by filter parameters")

	var buf bytes.Buffer
	PrintFilterDescription(&buf, filters)
	assert.Contains(t, buf.String(), `skip any matching "^skip"`)
}

func TestRegexListRejectsBadPattern(t *testing.T) {
	var r RegexList
	assert.Error(t, r.Set("("))
	assert.False(t, r.IsDefined())
}

func TestCapturedOutputDump(t *testing.T) {
	var l CapturingLogger
	l.Printf("hello %s", "there")
	_, _ = l.Write([]byte("raw line\n"))
	LoggerWithPrefix(&l, "[p] ").Printf("x")

	var buf bytes.Buffer
	l.Output().Dump(&buf, "  ")
	lines := regexp.MustCompile(`(?m)^  \[[^\]]+\] (.*)$`).FindAllStringSubmatch(buf.String(), -1)
	require.Len(t, lines, 3)
	assert.Equal(t, "hello there", lines[0][1])
	assert.Equal(t, "raw line", lines[1][1])
	assert.Equal(t, "[p] x", lines[2][1])
}

func TestPrintResults(t *testing.T) {
	r := Results{
		Tests:    []TestResult{{TestID: TestID{Path: []string{"a"}}}, {TestID: TestID{Path: []string{"b", "c"}}}},
		Failures: []TestResult{{TestID: TestID{Path: []string{"b", "c"}}}},
	}
	var buf bytes.Buffer
	PrintResults(&buf, r)
	assert.Equal(t, "Tests: 1 passed, 1 failed, 0 skipped\nFailed tests:\n  b/c\n", buf.String())
}
