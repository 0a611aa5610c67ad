package calllog

import (
	"context"
	"strings"
)

// TestNameSeparator joins the components of a test path.
const TestNameSeparator = " > "

type testNameKey struct{}

// WithTestName returns a context that attributes calls made with it to the named test.
func WithTestName(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, testNameKey{}, name)
}

// WithTestPath is like WithTestName, joining a suite path and test name.
func WithTestPath(ctx context.Context, path ...string) context.Context {
	return WithTestName(ctx, strings.Join(path, TestNameSeparator))
}

// TestName returns the test a call is attributed to, or "" if none.
func TestName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(testNameKey{}).(string)
	return name
}
