package calllog

import (
	"fmt"
	"io"
)

// recoveringWriter turns a panic in the underlying writer into an error, so that a
// renderer holding a lock around the write always gets to release it.
type recoveringWriter struct {
	out io.Writer
}

func newRecoveringWriter(out io.Writer) io.Writer {
	if out == nil {
		return io.Discard
	}
	return recoveringWriter{out: out}
}

func (w recoveringWriter) Write(p []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("log output failed: %v", r)
		}
	}()
	return w.out.Write(p)
}
