package calllog

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const ruleWidth = 72

var (
	heavyRule = strings.Repeat("═", ruleWidth)
	lightRule = strings.Repeat("─", ruleWidth)
)

type prettyRenderer struct {
	out      io.Writer
	maxBody  int
	headings map[RecordType]*color.Color
	label    *color.Color
	rule     *color.Color
	lock     sync.Mutex
}

func newPrettyRenderer(opts Options) *prettyRenderer {
	r := &prettyRenderer{
		out:     newRecoveringWriter(opts.Output),
		maxBody: opts.MaxBody,
		headings: map[RecordType]*color.Color{
			TypeRequest:  color.New(color.FgCyan, color.Bold),
			TypeResponse: color.New(color.FgGreen, color.Bold),
			TypeError:    color.New(color.FgRed, color.Bold),
		},
		label: color.New(color.Faint),
		rule:  color.New(color.FgHiBlack),
	}
	for _, c := range r.allColors() {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *prettyRenderer) allColors() []*color.Color {
	ret := []*color.Color{r.label, r.rule}
	for _, c := range r.headings {
		ret = append(ret, c)
	}
	return ret
}

var headingText = map[RecordType]string{
	TypeRequest:  "→ REQUEST",
	TypeResponse: "← RESPONSE",
	TypeError:    "✖ ERROR",
}

func (r *prettyRenderer) render(rec Record) {
	var b strings.Builder
	b.WriteString(r.rule.Sprint(heavyRule))
	b.WriteByte('\n')
	heading := r.headings[rec.Type].Sprint(headingText[rec.Type])
	fmt.Fprintf(&b, "%s  %s %s\n", heading, rec.Method, rec.URL)
	b.WriteString(r.rule.Sprint(lightRule))
	b.WriteByte('\n')

	r.field(&b, "url", rec.FullURL)
	r.field(&b, "test", rec.TestContext)
	r.field(&b, "time", rec.Timestamp.UTC().Format(time.RFC3339Nano))
	if rec.Status != 0 {
		r.field(&b, "status", fmt.Sprint(rec.Status))
	}
	r.field(&b, "code", rec.Code)
	if rec.Type == TypeError {
		r.field(&b, "message", rec.Message)
	}
	if rec.NoResponse {
		r.field(&b, "response", NoResponseMarker)
	}
	if len(rec.Headers) > 0 {
		fmt.Fprintf(&b, "%s\n", r.label.Sprint("headers:"))
		keys := make([]string, 0, len(rec.Headers))
		for k := range rec.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, rec.Headers[k])
		}
	}
	if rec.Body != nil {
		fmt.Fprintf(&b, "%s\n", r.label.Sprint("body:"))
		for _, line := range strings.Split(SerializeIndent(rec.Body, r.maxBody), "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	b.WriteString(r.rule.Sprint(heavyRule))
	b.WriteByte('\n')

	r.lock.Lock()
	defer r.lock.Unlock()
	_, _ = io.WriteString(r.out, b.String())
}

func (r *prettyRenderer) field(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s %s\n", r.label.Sprintf("%-8s", name+":"), value)
}
