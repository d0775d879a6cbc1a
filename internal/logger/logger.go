package logger

import (
	"io"

	"github.com/loykin/deployr/internal/config"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for the operations log.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Writer returns a rotating writer for the operations log, or nil when
// no log path is configured.
func Writer(c *config.LogConfig) io.WriteCloser {
	if c == nil || c.Path == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   c.Path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
