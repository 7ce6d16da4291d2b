package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Init initializes the default logger writing JSON to os.Stderr.
// It ensures that the logger is initialized only once.
func Init() {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339
		defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		defaultLogger.Info().Msg("Logger initialized")
	})
}

// Get returns the initialized default logger.
// It calls Init() to ensure the logger is ready before returning it.
func Get() zerolog.Logger {
	Init()
	return defaultLogger
}

// SetLevel adjusts the global log level. Unknown levels leave it unchanged.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		Warn("Unknown log level, keeping current", "level", level)
		return
	}
	zerolog.SetGlobalLevel(parsed)
}

// Info logs an informational message using the default logger.
func Info(msg string, args ...any) {
	withFields(Get().Info(), args).Msg(msg)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...any) {
	withFields(Get().Warn(), args).Msg(msg)
}

// Error logs an error message using the default logger.
func Error(msg string, err error, args ...any) {
	withFields(Get().Error().Err(err), args).Msg(msg)
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...any) {
	withFields(Get().Debug(), args).Msg(msg)
}

// withFields applies alternating key/value pairs to the event. A trailing key
// without a value is recorded under "EXTRA_VALUE".
func withFields(ev *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		ev = ev.Interface(fmt.Sprint(args[i]), args[i+1])
	}
	if len(args)%2 != 0 {
		ev = ev.Interface("EXTRA_VALUE", args[len(args)-1])
	}
	return ev
}
