package calllog

import (
	"context"

	"github.com/reservekit/api-contract-tests/transport"
)

// Name is the interceptor name of the call logger.
const Name = "logger"

// Logger is a transport interceptor that emits a structured record for each request and
// for the outcome of each call. It observes errors but always returns them unchanged.
type Logger struct {
	opts     Options
	renderer renderer
}

// New creates a Logger. Zero-valued options take their documented defaults.
func New(opts Options) *Logger {
	opts = opts.withDefaults()
	l := &Logger{opts: opts}
	if opts.Format == FormatPretty {
		l.renderer = newPrettyRenderer(opts)
	} else {
		l.renderer = newJSONRenderer(opts)
	}
	return l
}

func (l *Logger) Name() string { return Name }

func (l *Logger) Layer() transport.Layer { return transport.LayerLogger }

// Install installs the logger on a client. It does nothing if the client is nil or already
// has a logger, and reports whether anything changed.
func (l *Logger) Install(c *transport.Client) bool {
	if c == nil {
		return false
	}
	return c.Install(l) > 0
}

func (l *Logger) Wrap(method transport.Method, next transport.VerbFunc) transport.VerbFunc {
	return func(ctx context.Context, url string, body any, cfg *transport.RequestConfig) (*transport.Response, error) {
		verbose := l.opts.Mode == ModeDebug
		test := TestName(ctx)
		if verbose {
			rec := l.newRecord(TypeRequest, method, url, test)
			if cfg != nil {
				rec.Headers = SanitizeHeaders(cfg.Headers, l.opts.ShowSensitive)
			}
			rec.Body = ParseBody(body)
			l.emit(rec)
		}

		resp, err := next(ctx, url, body, cfg)

		if err != nil {
			l.emit(l.errorRecord(method, url, test, err))
			return resp, err
		}
		if verbose && resp != nil {
			rec := l.newRecord(TypeResponse, method, url, test)
			rec.Status = resp.Status
			rec.Headers = SanitizeHeaders(resp.Headers, l.opts.ShowSensitive)
			rec.Body = ParseBody(resp.Data)
			l.emit(rec)
		}
		return resp, err
	}
}

func (l *Logger) newRecord(t RecordType, method transport.Method, url, test string) Record {
	full := transport.ResolveURL(l.opts.BaseURL, url)
	return Record{
		Type:        t,
		Method:      method,
		URL:         shortURL(url),
		FullURL:     full,
		TestContext: test,
		Timestamp:   l.opts.Now(),
	}
}

func (l *Logger) errorRecord(method transport.Method, url, test string, err error) Record {
	rec := l.newRecord(TypeError, method, url, test)
	te, ok := transport.AsError(err)
	if !ok {
		rec.Message = err.Error()
		rec.NoResponse = true
		return rec
	}
	rec.Code = te.Code
	rec.Message = te.Message
	if rec.Message == "" {
		rec.Message = te.Error()
	}
	if te.Response == nil {
		rec.NoResponse = true
		return rec
	}
	rec.Status = te.Response.Status
	rec.Headers = SanitizeHeaders(te.Response.Headers, l.opts.ShowSensitive)
	rec.Body = ParseBody(te.Response.Data)
	return rec
}

// emit renders a record. A failure while rendering is swallowed; logging must never
// change the outcome of a call.
func (l *Logger) emit(rec Record) {
	defer func() {
		_ = recover()
	}()
	l.renderer.render(rec)
}
