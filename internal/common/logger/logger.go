package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	service string
	entry   *logrus.Entry
}

var base = newBase(os.Stdout)

func newBase(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel adjusts the process-wide level. Unknown levels keep the current one.
func SetLevel(level string) {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		base.SetLevel(lvl)
	}
}

// SetOutput redirects every logger created by New.
func SetOutput(w io.Writer) { base.SetOutput(w) }

func New(service string) *Logger {
	return &Logger{
		service: service,
		entry: base.WithFields(logrus.Fields{
			"service":  service,
			"hostname": hostname(),
		}),
	}
}

// With returns a child logger carrying extra fields on every entry.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{service: l.service, entry: l.entry.WithFields(fields)}
}

func (l *Logger) WithRequestID(id string) *Logger {
	if id == "" {
		return l
	}
	return l.With(map[string]any{"request_id": id})
}

func (l *Logger) log(level logrus.Level, action string, fields map[string]any, err error) {
	e := l.entry.WithField("action", action)
	if fields != nil {
		e = e.WithFields(fields)
	}
	if err != nil {
		e = e.WithField("error", map[string]any{"msg": err.Error(), "type": fmt.Sprintf("%T", err)})
	}
	e.Log(level, action)
}

func (l *Logger) Info(action string, fields map[string]any)  { l.log(logrus.InfoLevel, action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any) { l.log(logrus.DebugLevel, action, fields, nil) }
func (l *Logger) Warn(action string, err error, fields map[string]any) {
	l.log(logrus.WarnLevel, action, fields, err)
}
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(logrus.ErrorLevel, action, fields, err)
}

func hostname() string { h, _ := os.Hostname(); return h }
