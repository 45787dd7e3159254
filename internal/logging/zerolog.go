package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/nodepress/designer/internal/interfaces"
)

// ZerologLogger adapts rs/zerolog to interfaces.Logger. It is the backend used
// by the server binary; StdoutLogger stays around for tests and tooling.
type ZerologLogger struct {
	base zerolog.Logger
}

// NewZerologLogger builds a ZerologLogger writing JSON lines to w (stdout when
// nil) at the given level ("debug", "info", ...; empty means info).
func NewZerologLogger(w io.Writer, level string) (*ZerologLogger, error) {
	if w == nil {
		w = os.Stdout
	}

	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}

	base := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &ZerologLogger{base: base}, nil
}

func (z *ZerologLogger) emit(ev *zerolog.Event, msg string, fields []interfaces.Field) {
	for _, f := range fields {
		ev = ev.Interface(f.Key, f.Value)
	}
	ev.Msg(msg)
}

func (z *ZerologLogger) Debug(msg string, fields ...interfaces.Field) {
	z.emit(z.base.Debug(), msg, fields)
}

func (z *ZerologLogger) Info(msg string, fields ...interfaces.Field) {
	z.emit(z.base.Info(), msg, fields)
}

func (z *ZerologLogger) Warn(msg string, fields ...interfaces.Field) {
	z.emit(z.base.Warn(), msg, fields)
}

func (z *ZerologLogger) Error(msg string, fields ...interfaces.Field) {
	z.emit(z.base.Error(), msg, fields)
}

func (z *ZerologLogger) With(fields ...interfaces.Field) interfaces.Logger {
	builder := z.base.With()
	for _, f := range fields {
		builder = builder.Interface(f.Key, f.Value)
	}
	return &ZerologLogger{base: builder.Logger()}
}
