package framework

import (
	"fmt"
	"io"
	"strings"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns the number of tests that passed, failed and were skipped.
func (r Results) Counts() (passed, failed, skipped int) {
	failed = len(r.Failures)
	for _, t := range r.Tests {
		if t.Skipped {
			skipped++
		}
	}
	passed = len(r.Tests) - failed - skipped
	return
}

// PrintResults writes a summary of the results, listing every failed test.
func PrintResults(out io.Writer, r Results) {
	passed, failed, skipped := r.Counts()
	fmt.Fprintf(out, "Tests: %d passed, %d failed, %d skipped\n", passed, failed, skipped)
	if failed == 0 {
		return
	}
	fmt.Fprintln(out, "Failed tests:")
	for _, f := range r.Failures {
		fmt.Fprintf(out, "  %s\n", f.TestID)
	}
}

type TestID struct {
	Path []string
}

// Plus returns a new TestID with one more path component.
func (t TestID) Plus(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
