package core

// Logger is any leveled logging service.
// Implementations must accept extra context values in args
// (errors, maps, user records) and must never panic while logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
