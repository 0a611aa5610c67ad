package calllog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Mode controls whether successful request/response pairs are logged.
type Mode string

const (
	// ModeInfo logs only errors.
	ModeInfo Mode = "info"
	// ModeDebug logs every request and response as well as errors.
	ModeDebug Mode = "debug"
)

// Format selects the rendering of records.
type Format string

const (
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
	// FormatPretty writes a human-readable block per record.
	FormatPretty Format = "pretty"
)

// ParseMode parses a LOG_MODE value. An empty string means ModeInfo.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeInfo:
		return ModeInfo, nil
	case ModeDebug:
		return ModeDebug, nil
	default:
		return "", fmt.Errorf("unknown log mode %q (expected %q or %q)", s, ModeInfo, ModeDebug)
	}
}

// ParseFormat parses a LOG_FORMAT value. An empty string means FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatPretty:
		return FormatPretty, nil
	default:
		return "", fmt.Errorf("unknown log format %q (expected %q or %q)", s, FormatJSON, FormatPretty)
	}
}

// Options configures a Logger.
type Options struct {
	Mode   Mode
	Format Format

	// MaxBody caps the length of serialized bodies, in characters. Zero means unlimited.
	MaxBody int

	// ShowSensitive disables header redaction.
	ShowSensitive bool

	// Output receives rendered records. Defaults to os.Stdout.
	Output io.Writer

	// BaseURL is used to build the full URL of relative request URLs.
	BaseURL string

	// Color enables ANSI colors in the pretty format.
	Color bool

	// Now is the clock used for record timestamps. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeInfo
	}
	if o.Format == "" {
		o.Format = FormatJSON
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.MaxBody < 0 {
		o.MaxBody = 0
	}
	return o
}
