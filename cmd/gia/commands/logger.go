package commands

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/fivetwenty-io/gia/pkg/iga"
)

var _ iga.Logger = (*LogrusLogger)(nil)

// LogrusLogger adapts a logrus logger to iga.Logger.
type LogrusLogger struct {
	logger *logrus.Logger
}

// NewLogrusLogger logs text to out at info level, or debug level when verbose.
func NewLogrusLogger(out io.Writer, verbose bool) *LogrusLogger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !verbose,
		FullTimestamp:    verbose,
	})

	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return &LogrusLogger{logger: logger}
}

// Debug logs at debug level.
func (l *LogrusLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Debug(msg)
}

// Info logs at info level.
func (l *LogrusLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn logs at warn level.
func (l *LogrusLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error logs at error level.
func (l *LogrusLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.WithFields(logrus.Fields(fields)).Error(msg)
}
