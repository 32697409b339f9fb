package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	log  Logger = NullLogger{}
	once sync.Once
)

// InitLogger opens ~/.modkit/modkit.log and installs a zerolog backed logger.
// The first call wins; later calls are no-ops.
func InitLogger(debug bool) error {
	var initErr error
	once.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get user home directory: %w", err)
			return
		}

		dir := filepath.Join(homeDir, ".modkit")
		if err := os.MkdirAll(dir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create .modkit directory: %w", err)
			return
		}

		logFile, err := os.OpenFile(filepath.Join(dir, "modkit.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
		if err != nil {
			initErr = fmt.Errorf("failed to open log file: %w", err)
			return
		}

		log = NewZerologLogger(logFile, debug)
	})
	return initErr
}

// GetLogger returns the process logger. It is a NullLogger until InitLogger succeeds.
func GetLogger() Logger {
	return log
}

// NewZerologLogger writes JSON lines with timestamps to w.
func NewZerologLogger(w io.Writer, debug bool) Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &ZerologAdapter{logger: &zl}
}

// ZerologAdapter adapts zerolog.Logger to our Logger interface
type ZerologAdapter struct {
	logger *zerolog.Logger
}

func (z *ZerologAdapter) Debug(msg string) { z.logger.Debug().Msg(msg) }
func (z *ZerologAdapter) Info(msg string)  { z.logger.Info().Msg(msg) }
func (z *ZerologAdapter) Warn(msg string)  { z.logger.Warn().Msg(msg) }
func (z *ZerologAdapter) Error(msg string) { z.logger.Error().Msg(msg) }
func (z *ZerologAdapter) WithField(key string, value interface{}) Logger {
	newLogger := z.logger.With().Interface(key, value).Logger()
	return &ZerologAdapter{logger: &newLogger}
}
