// Package logrus backs logger.Logger with sirupsen/logrus
package logrus

import (
	"io"

	"github.com/raykavin/reportview/pkg/logger"
	"github.com/sirupsen/logrus"
)

// Options configures the logrus backend
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// Adapter exposes a logrus entry as a logger.Logger
type Adapter struct {
	*logrus.Entry
}

// New builds a logrus backed logger
func New(opts Options) *Adapter {
	log := logrus.New()
	if opts.Output != nil {
		log.SetOutput(opts.Output)
	}
	if opts.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	adapter := NewAdapter(logrus.NewEntry(log))
	adapter.SetLevel(logger.ParseLevel(opts.Level))
	return adapter
}

func NewAdapter(entry *logrus.Entry) *Adapter {
	return &Adapter{entry}
}

func (a *Adapter) WithField(key string, value any) logger.Logger {
	return &Adapter{a.Entry.WithField(key, value)}
}

func (a *Adapter) WithFields(fields map[string]any) logger.Logger {
	return &Adapter{a.Entry.WithFields(fields)}
}

func (a *Adapter) WithError(err error) logger.Logger {
	return &Adapter{a.Entry.WithError(err)}
}

// SetLevel implements logger.Logger. Disabled maps to panic, the quietest
// level logrus knows.
func (a *Adapter) SetLevel(level logger.Level) {
	a.Logger.SetLevel(toLogrusLevel(level))
}

// GetLevel implements logger.Logger.
func (a *Adapter) GetLevel() logger.Level {
	switch a.Logger.GetLevel() {
	case logrus.TraceLevel:
		return logger.TraceLevel
	case logrus.DebugLevel:
		return logger.DebugLevel
	case logrus.InfoLevel:
		return logger.InfoLevel
	case logrus.WarnLevel:
		return logger.WarnLevel
	case logrus.ErrorLevel:
		return logger.ErrorLevel
	case logrus.FatalLevel:
		return logger.FatalLevel
	default:
		return logger.PanicLevel
	}
}

func toLogrusLevel(level logger.Level) logrus.Level {
	switch level {
	case logger.TraceLevel:
		return logrus.TraceLevel
	case logger.DebugLevel:
		return logrus.DebugLevel
	case logger.WarnLevel:
		return logrus.WarnLevel
	case logger.ErrorLevel:
		return logrus.ErrorLevel
	case logger.FatalLevel:
		return logrus.FatalLevel
	case logger.PanicLevel, logger.Disabled:
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}
