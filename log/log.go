// Package log is the application's structured logger. Output goes to a daily file under where.Logs()
// and is discarded entirely unless logs.write is enabled.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	logger = newDiscard()
	// file is the log file the current logger writes to, if any.
	file io.Closer
)

func newDiscard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Setup configures the logger from logs.write, logs.json and logs.level.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		replace(newDiscard(), nil)
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	path := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	l := logrus.New()
	l.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		l.SetFormatter(&logrus.JSONFormatter{PrettyPrint: true})
	} else {
		l.SetFormatter(&logrus.TextFormatter{})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	replace(l, f)
	return nil
}

// replace swaps in a new logger and closes the file of the previous one.
func replace(l *logrus.Logger, f io.Closer) {
	previous := file
	logger, file = l, f

	if previous != nil {
		_ = previous.Close()
	}
}

// Fields starts a structured entry.
func Fields(fields map[string]any) *logrus.Entry {
	return logger.WithFields(fields)
}

// Component tags every entry with the emitting component.
func Component(name string) *logrus.Entry {
	return logger.WithField("component", name)
}

func Error(args ...any)                 { logger.Error(args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
func Warn(args ...any)                  { logger.Warn(args...) }
func Warnf(format string, args ...any)  { logger.Warnf(format, args...) }
func Info(args ...any)                  { logger.Info(args...) }
func Infof(format string, args ...any)  { logger.Infof(format, args...) }
func Debug(args ...any)                 { logger.Debug(args...) }
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
func Trace(args ...any)                 { logger.Trace(args...) }
func Tracef(format string, args ...any) { logger.Tracef(format, args...) }
