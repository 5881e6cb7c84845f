package logger

import (
	"time"

	"github.com/specterops/xf/internal/config"
)

// TaskLogger logs for one concurrent task. It has its own indentation and
// tags every line with the task, so output of parallel queries stays
// readable.
type TaskLogger struct {
	base   *Logger
	prefix string
	indent int
}

// NewTaskLogger creates a TaskLogger writing through base.
func NewTaskLogger(base *Logger, taskID string) *TaskLogger {
	t := &TaskLogger{base: base}
	if taskID != "" {
		t.prefix = "[" + taskID + "] "
	}
	return t
}

func (t *TaskLogger) emit(lv level, message, end string) {
	t.base.emit(record{at: time.Now(), level: lv, prefix: t.prefix, indent: t.indent, text: message}, end)
}

// Print prints an untagged message.
func (t *TaskLogger) Print(message string) { t.emit(untagged, message, "\n") }

// PrintWithEnd prints an untagged message with a custom line ending.
func (t *TaskLogger) PrintWithEnd(message string, end string) { t.emit(untagged, message, end) }

func (t *TaskLogger) Info(message string) { t.emit(levels[INFO], message, "\n") }

func (t *TaskLogger) Debug(message string) {
	if t.base.config.Debug() {
		t.emit(levels[DEBUG], message, "\n")
	}
}

func (t *TaskLogger) Warning(message string)  { t.emit(levels[WARNING], message, "\n") }
func (t *TaskLogger) Error(message string)    { t.emit(levels[ERROR], message, "\n") }
func (t *TaskLogger) Critical(message string) { t.emit(levels[CRITICAL], message, "\n") }

// IncrementIndent and DecrementIndent are not safe for concurrent use; a
// TaskLogger belongs to one goroutine.
func (t *TaskLogger) IncrementIndent() { t.indent++ }

func (t *TaskLogger) DecrementIndent() {
	if t.indent > 0 {
		t.indent--
	}
}

// Config returns the underlying logger's config.
func (t *TaskLogger) Config() *config.Config {
	return t.base.config
}

// LoggerInterface is what packages log through. *Logger and *TaskLogger
// implement it.
type LoggerInterface interface {
	Print(message string)
	PrintWithEnd(message string, end string)
	Info(message string)
	Debug(message string)
	Warning(message string)
	Error(message string)
	Critical(message string)
	IncrementIndent()
	DecrementIndent()
	Config() *config.Config
}

var (
	_ LoggerInterface = (*Logger)(nil)
	_ LoggerInterface = (*TaskLogger)(nil)
)
