package mylog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/MarcGrol/ergsync/lib/mycontext"
)

var (
	mutex  sync.RWMutex
	output = newOutput(os.Stderr, FormatConsole)
)

func init() {
	New = newZerologLogger
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		// Cloud Logging parses JSON lines and expects the level under "severity"
		zerolog.LevelFieldName = "severity"
		zerolog.LevelFieldMarshalFunc = func(l zerolog.Level) string {
			return strings.ToUpper(l.String())
		}
		output = newOutput(os.Stderr, FormatJSON)
	}
}

// Configure sets the global minimum level and the output format of all loggers.
func Configure(level string, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", level, err)
	}
	if format != FormatConsole && format != FormatJSON {
		return fmt.Errorf("invalid log format '%s'", format)
	}
	zerolog.SetGlobalLevel(lvl)
	SetOutput(os.Stderr, format)
	return nil
}

// SetOutput redirects all loggers to w.
func SetOutput(w io.Writer, format string) {
	mutex.Lock()
	defer mutex.Unlock()
	output = newOutput(w, format)
}

func newOutput(w io.Writer, format string) zerolog.Logger {
	if format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

func current() zerolog.Logger {
	mutex.RLock()
	defer mutex.RUnlock()
	return output
}

type zerologLogger struct {
	componentName string
}

func newZerologLogger(componentName string) Logger {
	return zerologLogger{
		componentName: componentName,
	}
}

func (l zerologLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...interface{}) {
	logger := current()
	event := logger.WithLevel(toLevel(severity)).Str("component", l.componentName)
	if traceLabel != "" {
		event = event.Str("label", traceLabel)
	}
	if trace := mycontext.TraceFrom(ctx); trace != "" {
		event = event.Str("trace", trace)
	}
	event.Msgf(format, a...)
}

func toLevel(severity Severity) zerolog.Level {
	switch severity {
	case SeverityDebug:
		return zerolog.DebugLevel
	case SeverityWarn:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
