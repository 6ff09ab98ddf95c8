// Package log routes diagnostics through logrus, to a daily file under
// where.Logs() or to stderr. Nothing is emitted until one of them is set up.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kinoplay/kinoplay/filesystem"
	"github.com/kinoplay/kinoplay/key"
	"github.com/kinoplay/kinoplay/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	enabled bool
	discard = logrus.NewEntry(&logrus.Logger{
		Out:       io.Discard,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.PanicLevel,
	})
)

// Setup opens today's log file when logs.write is set.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	logrus.SetOutput(f)
	configure()
	return nil
}

// Console sends logs to stderr, for foreground runs without the overlay.
func Console() {
	enabled = true
	logrus.SetOutput(os.Stderr)
	configure()
}

func configure() {
	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func entry() *logrus.Entry {
	if enabled {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return discard
}

// WithFields returns an entry carrying structured fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return entry().WithFields(fields)
}

func Error(args ...any)                 { entry().Error(args...) }
func Errorf(format string, args ...any) { entry().Errorf(format, args...) }
func Warnf(format string, args ...any)  { entry().Warnf(format, args...) }
func Infof(format string, args ...any)  { entry().Infof(format, args...) }
func Debugf(format string, args ...any) { entry().Debugf(format, args...) }
