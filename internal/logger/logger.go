package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slogzerolog "github.com/samber/slog-zerolog/v2"

	"github.com/RobBrazier/booksearch/config"
)

// Setup configures the global zerolog logger from config and routes slog
// (used by go-retryablehttp) through it.
func Setup() *zerolog.Logger {
	return setup(os.Stderr, config.LogFormat() == "text" || config.IsLocal(), config.LogLevel())
}

func setup(out io.Writer, console bool, level zerolog.Level) *zerolog.Logger {
	writer := out
	if console {
		writer = zerolog.ConsoleWriter{Out: out}
	}
	context := zerolog.New(writer).With().Timestamp().Caller()
	if !console {
		context = context.Str("service.name", "booksearch")
	}
	logger := context.Logger().Level(level)
	log.Logger = logger

	slog.SetDefault(slog.New(slogzerolog.Option{Logger: &logger}.NewZerologHandler()))
	return &logger
}
