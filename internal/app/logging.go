package app

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/law-makers/blocklist/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// parseLevel maps the configured level name onto zerolog
func parseLevel(name string) zerolog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// newLogger builds the run logger: console or JSON on stderr, plus an
// optional rotated log file. The returned closer releases the file.
func newLogger(cfg *config.Config, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	var console io.Writer
	if cfg.JSONLog {
		console = stderr
	} else {
		console = zerolog.ConsoleWriter{Out: stderr, TimeFormat: "2006-01-02 15:04:05"}
	}

	writers := []io.Writer{console}
	var closer io.Closer = io.NopCloser(nil)

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o750); err != nil {
			return zerolog.Logger{}, nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		}
		// the file always gets JSON lines
		writers = append(writers, rotator)
		closer = rotator
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(cfg.LogLevel)).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}
