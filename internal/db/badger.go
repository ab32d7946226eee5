package db

import (
	"fmt"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/yigit/filechat/internal/config"
	"github.com/yigit/filechat/internal/pkg/logger"
)

// badgerLogger forwards badger's printf style logging to zerolog
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// badgerOptions builds the store options. Badger only logs warnings and up unless debug is enabled.
func badgerOptions(path string, lgr zerolog.Logger) badger.Options {
	options := badger.DefaultOptions(path).
		WithLogger(badgerLogger{logger: logger.WithComponent(lgr, "badger")})

	if lgr.GetLevel() <= zerolog.DebugLevel {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// NewBadgerDB opens the embedded message store, creating its directory when needed
func NewBadgerDB(cfg *config.Config, lgr zerolog.Logger) (*badger.DB, error) {
	path := cfg.Database.BadgerPath
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory: %w", err)
	}

	database, err := badger.Open(badgerOptions(path, lgr))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	return database, nil
}
