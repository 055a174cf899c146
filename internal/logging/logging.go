package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"parking-service/internal/config"
)

// New builds the root logger. Unknown levels fall back to info.
func New(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var w io.Writer = os.Stdout
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
