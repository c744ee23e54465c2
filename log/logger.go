package log

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var (
	logger     zerolog.Logger
	loggerLock sync.RWMutex
)

func init() {
	logger = newLogger(consoleOutput(os.Stdout), zerolog.InfoLevel)
}

func newLogger(output io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// consoleOutput pretty prints for terminals and writes JSON otherwise
func consoleOutput(f *os.File) io.Writer {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return zerolog.ConsoleWriter{
			Out:        f,
			TimeFormat: time.Kitchen,
		}
	}
	return f
}

// Options configures the global logger
type Options struct {
	Level string
	// File, when set, receives a JSON copy of every log line
	File string
}

// Configure replaces the global logger. The returned closer releases the
// log file, if any.
func Configure(opts Options) (io.Closer, error) {
	output := consoleOutput(os.Stdout)
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		output = zerolog.MultiLevelWriter(output, f)
		closer = f
	}

	loggerLock.Lock()
	logger = newLogger(output, parseLogLevel(opts.Level))
	loggerLock.Unlock()
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetLevel sets the global log level at runtime
func SetLevel(levelStr string) {
	level := parseLogLevel(levelStr)
	loggerLock.Lock()
	logger = logger.Level(level)
	loggerLock.Unlock()
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func current() zerolog.Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

// Debug logs a debug message
func Debug() *zerolog.Event {
	l := current()
	return l.Debug()
}

// Info logs an info message
func Info() *zerolog.Event {
	l := current()
	return l.Info()
}

// Warn logs a warning message
func Warn() *zerolog.Event {
	l := current()
	return l.Warn()
}

// Error logs an error message
func Error() *zerolog.Event {
	l := current()
	return l.Error()
}

// Fatal logs a fatal message and exits
func Fatal() *zerolog.Event {
	l := current()
	return l.Fatal()
}

// Logger returns the underlying zerolog.Logger for integrations
func Logger() zerolog.Logger {
	return current()
}

// GetLogger returns a child logger tagged with the component name
func GetLogger(component string) zerolog.Logger {
	return current().With().Str("component", component).Logger()
}

// zerologWriter wraps a zerolog.Logger to implement io.Writer
type zerologWriter struct {
	logger zerolog.Logger
}

func (w zerologWriter) Write(p []byte) (n int, err error) {
	// Trim trailing newline that stdlib log adds
	msg := strings.TrimSuffix(string(p), "\n")
	w.logger.Warn().Msg(msg)
	return len(p), nil
}

// StdErrorLogger returns a standard library *log.Logger that writes to zerolog.
// Useful for passing to http.Server.ErrorLog.
func StdErrorLogger() *stdlog.Logger {
	return stdlog.New(zerologWriter{logger: current()}, "", 0)
}
