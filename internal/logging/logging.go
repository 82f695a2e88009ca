// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the global logger. Console output always goes to stderr; when file is set,
// a rotated plain-text copy is written there as well.
func Setup(level, file string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}}
	if file != "" {
		writers = append(writers, zerolog.ConsoleWriter{
			Out: &lumberjack.Logger{
				Filename:   file,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     28,
			},
			NoColor:    true,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

// For returns a sub-logger tagged with the component name.
func For(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
