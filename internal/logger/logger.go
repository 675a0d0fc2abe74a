// Package logger é a fachada de log estruturado (logrus) usada pelo CLI,
// pelo servidor e pelos middlewares.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	FormatJSON = "json"
	FormatText = "text"

	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
	textTimestamp   = "2006-01-02 15:04:05"
)

// Logger é um logrus.FieldLogger com campo de componente.
type Logger interface {
	logrus.FieldLogger
	WithComponent(component string) Logger
}

type LogrusLogger struct {
	*logrus.Entry
}

// New cria um logger com nível e formato informados; valores desconhecidos
// caem em info / text.
func New(level, format string, out io.Writer) Logger {
	l := logrus.New()
	l.SetLevel(parseLevel(level))
	l.SetFormatter(formatter(format))
	if out == nil {
		out = os.Stderr
	}
	l.SetOutput(out)
	return &LogrusLogger{Entry: logrus.NewEntry(l)}
}

// NewNop descarta tudo (testes).
func NewNop() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &LogrusLogger{Entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{Entry: l.Entry.WithField("component", component)}
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func formatter(format string) logrus.Formatter {
	if strings.EqualFold(format, FormatJSON) {
		return &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: textTimestamp,
	}
}
