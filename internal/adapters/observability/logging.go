package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger.
// APP_ENV=dev (or development) uses a human-friendly console writer.
func NewLogger(env string) zerolog.Logger {
	return newLogger(env, os.Stdout)
}

// NewCLILogger logs to stderr so command output on stdout stays parseable.
func NewCLILogger(verbose bool) zerolog.Logger {
	lvl := zerolog.WarnLevel
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return newLogger("dev", os.Stderr).Level(lvl)
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	switch strings.ToLower(env) {
	case "dev", "development":
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}
