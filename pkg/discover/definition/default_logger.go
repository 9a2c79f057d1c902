package definition

import (
	"github.com/jabolina/go-discover/pkg/discover/types"
	"github.com/sirupsen/logrus"
)

// DefaultLogger is the Logger the instance uses when the caller doesn't
// supply one. The teacher's own default logger (definition.DefaultLogger)
// wraps the standard library's log.Logger directly; this one instead
// wraps logrus, promoting the teacher's indirect logrus dependency into
// the place it's actually used.
type DefaultLogger struct {
	entry *logrus.Entry
}

// NewDefaultLogger builds a logrus-backed Logger with text output on
// stderr, matching the teacher's "stderr, timestamped" default.
func NewDefaultLogger() *DefaultLogger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &DefaultLogger{entry: logrus.NewEntry(l)}
}

var _ types.Logger = (*DefaultLogger)(nil)

func (d *DefaultLogger) Debug(v ...interface{}) { d.entry.Debug(v...) }
func (d *DefaultLogger) Debugf(format string, v ...interface{}) { d.entry.Debugf(format, v...) }
func (d *DefaultLogger) Info(v ...interface{}) { d.entry.Info(v...) }
func (d *DefaultLogger) Infof(format string, v ...interface{}) { d.entry.Infof(format, v...) }
func (d *DefaultLogger) Warn(v ...interface{}) { d.entry.Warn(v...) }
func (d *DefaultLogger) Warnf(format string, v ...interface{}) { d.entry.Warnf(format, v...) }
func (d *DefaultLogger) Error(v ...interface{}) { d.entry.Error(v...) }
func (d *DefaultLogger) Errorf(format string, v ...interface{}) { d.entry.Errorf(format, v...) }

// ToggleDebug flips the logger's minimum level between Info and Debug,
// mirroring the teacher's DefaultLogger.ToggleDebug.
func (d *DefaultLogger) ToggleDebug(on bool) bool {
	if on {
		d.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		d.entry.Logger.SetLevel(logrus.InfoLevel)
	}
	return on
}
