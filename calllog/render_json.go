package calllog

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type renderer interface {
	render(rec Record)
}

// jsonRenderer writes one JSON object per record through a zap core. Request and response
// records are logged at debug level and errors at error level, and the core's level follows
// the logger mode, so zap itself drops request/response records in info mode.
type jsonRenderer struct {
	logger  *zap.Logger
	maxBody int
}

func newJSONRenderer(opts Options) *jsonRenderer {
	encoderConfig := zapcore.EncoderConfig{
		LevelKey:       "level",
		MessageKey:     "msg",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		LineEnding:     zapcore.DefaultLineEnding,
	}
	level := zapcore.InfoLevel
	if opts.Mode == ModeDebug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(newRecoveringWriter(opts.Output))),
		zap.NewAtomicLevelAt(level),
	)
	return &jsonRenderer{logger: zap.New(core), maxBody: opts.MaxBody}
}

func (r *jsonRenderer) render(rec Record) {
	fields := []zap.Field{
		zap.String("type", string(rec.Type)),
		zap.String("method", string(rec.Method)),
		zap.String("url", rec.URL),
		zap.String("fullUrl", rec.FullURL),
		zap.String("timestamp", rec.Timestamp.UTC().Format(time.RFC3339Nano)),
	}
	if rec.TestContext != "" {
		fields = append(fields, zap.String("test", rec.TestContext))
	}
	if rec.Status != 0 {
		fields = append(fields, zap.Int("status", rec.Status))
	}
	if rec.Code != "" {
		fields = append(fields, zap.String("code", rec.Code))
	}
	if rec.Type == TypeError {
		fields = append(fields, zap.String("error", rec.Message))
	}
	if rec.NoResponse {
		fields = append(fields, zap.String("response", NoResponseMarker))
	}
	if rec.Headers != nil {
		fields = append(fields, zap.Any("headers", rec.Headers))
	}
	if rec.Body != nil {
		fields = append(fields, r.bodyField(rec.Body))
	}

	msg := fmt.Sprintf("%s %s", rec.Method, rec.URL)
	switch rec.Type {
	case TypeError:
		r.logger.Error(msg, fields...)
	default:
		r.logger.Debug(msg, fields...)
	}
}

func (r *jsonRenderer) bodyField(body any) zap.Field {
	normalized := Normalize(ParseBody(body))
	if r.maxBody > 0 {
		s := serialize(normalized, false)
		if truncated := Truncate(s, r.maxBody); truncated != s {
			return zap.String("body", truncated)
		}
	}
	return zap.Any("body", normalized)
}
