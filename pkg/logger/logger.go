// Package logger holds the process-wide zerolog logger. cmd/ binaries call
// Init once; packages take a component child via For.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures Init.
type Options struct {
	Level   string    // LOG_LEVEL value; unknown or empty means info
	Pretty  bool      // console output for development, JSON otherwise
	Output  io.Writer // os.Stdout when nil
	Service string    // added to every entry as "service" when set
}

var (
	instance    zerolog.Logger
	once        sync.Once
	initialized bool
)

// Init builds the process logger from opts. Later calls return the first
// logger unchanged.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		var out io.Writer = os.Stdout
		if opts.Output != nil {
			out = opts.Output
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		lvl := parseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		fields := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
		if opts.Service != "" {
			fields = fields.Str("service", opts.Service)
		}
		instance = fields.Logger()
		initialized = true
	})
	return instance
}

// Get returns the process logger and panics before Init.
func Get() zerolog.Logger {
	if !initialized {
		panic("logger: Init has not been called")
	}
	return instance
}

// For returns the process logger with a "component" field.
func For(component string) zerolog.Logger {
	return Get().With().Str("component", component).Logger()
}

// Reset clears the process logger so tests can Init again.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
}

// parseLevel maps LOG_LEVEL to a zerolog level, falling back to info.
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
