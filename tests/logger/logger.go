package testutil

import (
	"sync"
)

// LogRecord is one captured logger call.
type LogRecord struct {
	Level   string
	Message string
	Args    []interface{}
}

// Logger is a core.Logger that records calls for assertions.
type Logger struct {
	mutex   sync.Mutex
	records []LogRecord
}

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.records = append(l.records, LogRecord{Level: level, Message: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("FATAL", msg, args) }

// Records returns captured calls, optionally filtered by level.
func (l *Logger) Records(level ...string) []LogRecord {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if len(level) == 0 {
		out := make([]LogRecord, len(l.records))
		copy(out, l.records)
		return out
	}
	var out []LogRecord
	for _, r := range l.records {
		if r.Level == level[0] {
			out = append(out, r)
		}
	}
	return out
}

func (l *Logger) Reset() {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.records = nil
}
