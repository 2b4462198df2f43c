package logger

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferPool = buffer.NewPool()

var levelColors = map[string]*color.Color{
	"DEBUG":   color.New(color.FgCyan),
	"INFO":    color.New(color.FgBlue),
	"SUCCESS": color.New(color.FgGreen),
	"WARN":    color.New(color.FgYellow),
	"ERROR":   color.New(color.FgRed),
	"FATAL":   color.New(color.FgRed, color.Bold),
}

// consoleEncoder renders "time [LEVEL] message key=value ..." lines. The
// bracketed level comes from the "customlevel" field when present, which is
// how SUCCESS entries are distinguished from plain INFO.
type consoleEncoder struct {
	zapcore.Encoder // JSON encoder; carries accumulated structured context
	cfg             zapcore.EncoderConfig
	colored         bool
}

// NewConsoleEncoder returns the kubeboot console encoder.
func NewConsoleEncoder(cfg zapcore.EncoderConfig, colored bool) zapcore.Encoder {
	return &consoleEncoder{
		Encoder: zapcore.NewJSONEncoder(cfg),
		cfg:     cfg,
		colored: colored,
	}
}

func (e *consoleEncoder) Clone() zapcore.Encoder {
	return &consoleEncoder{
		Encoder: e.Encoder.Clone(),
		cfg:     e.cfg,
		colored: e.colored,
	}
}

func (e *consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := bufferPool.Get()

	line.AppendString(ent.Time.Format(time.RFC3339))
	line.AppendByte(' ')

	levelStr := ent.Level.CapitalString()
	rest := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Key == "customlevel" {
			levelStr = f.String
			continue
		}
		rest = append(rest, f)
	}

	prefix := "[" + levelStr + "]"
	if e.colored {
		if c, ok := levelColors[levelStr]; ok {
			prefix = c.Sprint(prefix)
		}
	}
	line.AppendString(prefix)
	line.AppendByte(' ')
	line.AppendString(ent.Message)

	for _, f := range rest {
		m := zapcore.NewMapObjectEncoder()
		f.AddTo(m)
		for k, v := range m.Fields {
			line.AppendString(fmt.Sprintf(" %s=%v", k, v))
		}
	}

	if ent.Stack != "" {
		line.AppendByte('\n')
		line.AppendString(ent.Stack)
	}
	line.AppendByte('\n')
	return line, nil
}
