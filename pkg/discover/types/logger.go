package types

// Logger is the logging surface every component in the core talks to. The
// default implementation (definition.NewDefaultLogger) backs it with
// logrus, but any implementation can be supplied through
// discover.Instance.SetLogger.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Warn(v ...interface{})
	Warnf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}
