package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-arena/internal/config"
)

var sink io.Writer = os.Stdout

// Init configures the global zerolog logger. When cfg.File is set, output
// goes through a size-capped file writer shared with the HTTP request logger.
func Init(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	sink = os.Stdout
	if cfg.File != "" {
		if w, err := newCapWriter(cfg.File, cfg.MaxMB); err == nil {
			sink = w
		}
	}

	output := sink
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: sink}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the raw log sink, for wiring slog-based request logging
// onto the same destination.
func Writer() io.Writer {
	return sink
}
