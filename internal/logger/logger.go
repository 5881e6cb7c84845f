// Package logger writes levelled diagnostics for xf.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/specterops/xf/internal/config"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	INFO LogLevel = iota
	DEBUG
	WARNING
	ERROR
	CRITICAL
)

// level is how one LogLevel is tagged on the console and in the logfile.
type level struct {
	tag   string
	file  string
	color termenv.Color
}

var levels = map[LogLevel]level{
	INFO:     {"info-", "info", termenv.ANSIBrightGreen},
	DEBUG:    {"debug", "debug", termenv.ANSIBrightYellow},
	WARNING:  {"warn-", "warn", termenv.ANSIBrightMagenta},
	ERROR:    {"error", "error", termenv.ANSIBrightRed},
	CRITICAL: {"crit-", "crit", termenv.ANSIBrightRed},
}

// untagged is used by Print.
var untagged = level{tag: "-----"}

// record is one message before formatting. Task loggers fill in prefix.
type record struct {
	at     time.Time
	level  level
	prefix string
	indent int
	text   string
}

func (r record) timestamp() string {
	return r.at.Format("2006-01-02 15:04:05.000")
}

func (r record) body(plain bool) string {
	text := r.text
	if plain {
		text = ansi.Strip(text)
	}
	return r.prefix + strings.Repeat("  │ ", r.indent) + text
}

// console renders the record for the terminal.
func (r record) console(plain bool) string {
	tag := r.level.tag
	if !plain && r.level.color != nil {
		tag = termenv.String(tag).Foreground(r.level.color).Bold().String()
	}
	return "[" + r.timestamp() + "] [" + tag + "] " + r.body(plain)
}

// logfile renders the record without colours. Untagged messages carry no
// tag in the file.
func (r record) logfile() string {
	if r.level.file == "" {
		return "[" + r.timestamp() + "] " + r.body(true)
	}
	return "[" + r.timestamp() + "] [" + r.level.file + "] " + r.body(true)
}

// Logger writes levelled diagnostics to stderr and, optionally, a logfile.
// Listings go to stdout, so nothing here ever writes there.
type Logger struct {
	config      *config.Config
	out         io.Writer
	logfile     *os.File
	logfilePath string
	indentLevel int
	mu          sync.Mutex
}

// NewLogger creates a new Logger instance.
func NewLogger(cfg *config.Config, logfilePath string) *Logger {
	l := &Logger{
		config: cfg,
		out:    os.Stderr,
	}

	if logfilePath != "" {
		l.openLogFile(logfilePath)
	}

	return l
}

// SetOutput redirects console output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// openLogFile opens path, or path.N for the first free N when path exists.
func (l *Logger) openLogFile(path string) {
	final := path
	for k := 1; fileExists(final); k++ {
		final = fmt.Sprintf("%s.%d", path, k)
	}

	if dir := filepath.Dir(final); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	file, err := os.Create(final)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create log file %s: %v\n", final, err)
		return
	}

	l.logfile = file
	l.logfilePath = final
	l.Debug("Writing logs to logfile: '" + final + "'")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogfilePath returns the path actually written to, after rotation.
func (l *Logger) LogfilePath() string {
	return l.logfilePath
}

// Close closes the log file if one is open.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logfile != nil {
		l.logfile.Close()
		l.logfile = nil
	}
}

// emit writes r to the console and the logfile.
func (l *Logger) emit(r record, end string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	io.WriteString(l.out, r.console(l.config.NoColors())+end)
	if l.logfile != nil {
		io.WriteString(l.logfile, r.logfile()+end)
	}
}

func (l *Logger) record(lv level, message string) record {
	l.mu.Lock()
	indent := l.indentLevel
	l.mu.Unlock()
	return record{at: time.Now(), level: lv, indent: indent, text: message}
}

// Print prints an untagged message.
func (l *Logger) Print(message string) {
	l.PrintWithEnd(message, "\n")
}

// PrintWithEnd prints an untagged message with a custom line ending.
func (l *Logger) PrintWithEnd(message string, end string) {
	l.emit(l.record(untagged, message), end)
}

func (l *Logger) Info(message string) { l.emit(l.record(levels[INFO], message), "\n") }

// Debug logs only when debug output is enabled.
func (l *Logger) Debug(message string) {
	if l.config.Debug() {
		l.emit(l.record(levels[DEBUG], message), "\n")
	}
}

func (l *Logger) Warning(message string)  { l.emit(l.record(levels[WARNING], message), "\n") }
func (l *Logger) Error(message string)    { l.emit(l.record(levels[ERROR], message), "\n") }
func (l *Logger) Critical(message string) { l.emit(l.record(levels[CRITICAL], message), "\n") }

// IncrementIndent increases the indentation level.
func (l *Logger) IncrementIndent() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.indentLevel++
}

// DecrementIndent decreases the indentation level.
func (l *Logger) DecrementIndent() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indentLevel > 0 {
		l.indentLevel--
	}
}

// Config returns the logger's config.
func (l *Logger) Config() *config.Config {
	return l.config
}
