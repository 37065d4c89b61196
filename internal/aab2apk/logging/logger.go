package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger writes JSON lines through logrus. Data is attached under the "data" key.
type Logger struct {
	entry *logrus.Logger
}

func New(w io.Writer, debug bool) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	l.SetLevel(logrus.InfoLevel)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return &Logger{entry: l}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, false)
}

func (l *Logger) Info(msg string, data any) {
	l.log(logrus.InfoLevel, msg, data)
}

func (l *Logger) Warn(msg string, data any) {
	l.log(logrus.WarnLevel, msg, data)
}

func (l *Logger) Error(msg string, data any) {
	l.log(logrus.ErrorLevel, msg, data)
}

func (l *Logger) Debug(msg string, data any) {
	l.log(logrus.DebugLevel, msg, data)
}

func (l *Logger) log(level logrus.Level, msg string, data any) {
	if l == nil || !l.entry.IsLevelEnabled(level) {
		return
	}
	e := logrus.NewEntry(l.entry)
	if data != nil {
		if err, ok := data.(error); ok {
			data = err.Error()
		}
		e = e.WithField("data", data)
	}
	e.Log(level, msg)
}
