package utilities

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/antonio-alexander/go-hr-service/internal"

	"github.com/rs/zerolog"
)

const fieldCorrelationId string = "correlation_id"

type logger struct {
	zerolog.Logger
	config struct {
		Level  Level
		Pretty bool
	}
	writer io.Writer
}

type Level int

const (
	Error Level = 1
	Info  Level = 2
	Debug Level = 3
	Trace Level = 4
)

func (l Level) String() string {
	switch l {
	default:
		return ""
	case Error:
		return "error"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	default:
		return zerolog.ErrorLevel
	case Info:
		return zerolog.InfoLevel
	case Debug:
		return zerolog.DebugLevel
	case Trace:
		return zerolog.TraceLevel
	}
}

type Logger interface {
	Error(ctx context.Context, format string, v ...any)
	Info(ctx context.Context, format string, v ...any)
	Debug(ctx context.Context, format string, v ...any)
	Trace(ctx context.Context, format string, v ...any)
}

func atoLogLevel(a string) Level {
	switch strings.ToLower(a) {
	default:
		return Error
	case "info":
		return Info
	case "debug":
		return Debug
	case "trace":
		return Trace
	}
}

// NewLogger creates a leveled logger, an io.Writer can be provided as a
// parameter to redirect output (defaults to stdout)
func NewLogger(parameters ...any) interface {
	internal.Configurer
	Logger
} {
	l := &logger{writer: os.Stdout}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case io.Writer:
			l.writer = p
		}
	}
	l.config.Level = Error
	l.Logger = l.newLogger()
	return l
}

func (l *logger) newLogger() zerolog.Logger {
	writer := l.writer
	if l.config.Pretty {
		writer = zerolog.ConsoleWriter{Out: l.writer}
	}
	return zerolog.New(writer).
		Level(l.config.Level.zerolog()).
		With().Timestamp().Logger()
}

func (l *logger) Configure(envs map[string]string) error {
	l.config.Level = Error
	if logLevel, ok := envs["LOG_LEVEL"]; ok {
		l.config.Level = atoLogLevel(logLevel)
	}
	if logPretty, ok := envs["LOG_PRETTY"]; ok {
		l.config.Pretty = strings.EqualFold(logPretty, "true")
	}
	l.Logger = l.newLogger()
	return nil
}

func (l *logger) event(ctx context.Context, event *zerolog.Event, format string, v ...any) {
	if event == nil {
		return
	}
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		event = event.Str(fieldCorrelationId, correlationId)
	}
	event.Msgf(format, v...)
}

func (l *logger) Error(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Error(), format, v...)
}

func (l *logger) Info(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Info(), format, v...)
}

func (l *logger) Debug(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Debug(), format, v...)
}

func (l *logger) Trace(ctx context.Context, format string, v ...any) {
	l.event(ctx, l.Logger.Trace(), format, v...)
}

type noopLogger struct{}

// NewNoopLogger returns a Logger that discards everything, it's used when
// a component isn't given a logger
func NewNoopLogger() Logger {
	return noopLogger{}
}

func (noopLogger) Error(context.Context, string, ...any) {}
func (noopLogger) Info(context.Context, string, ...any)  {}
func (noopLogger) Debug(context.Context, string, ...any) {}
func (noopLogger) Trace(context.Context, string, ...any) {}
