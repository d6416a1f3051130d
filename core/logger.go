package core

type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// GroupTag attaches the class group a log entry is about.
// Loggers report it as structured data rather than printing it.
type GroupTag struct {
	GroupID string
}
