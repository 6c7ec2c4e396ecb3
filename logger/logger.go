package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

type Fields = logrus.Fields

var logger = newLogger(os.Stdout)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

func InitLogger(logLevel string) {
	switch logLevel {
	case "debug":
		SetLogLevel(DEBUG)
	case "info":
		SetLogLevel(INFO)
	case "warn":
		SetLogLevel(WARN)
	case "error":
		SetLogLevel(ERROR)
	default:
		SetLogLevel(INFO)
	}

	Debugf("Log level set to %s", logger.GetLevel())
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	switch level {
	case DEBUG:
		logger.SetLevel(logrus.DebugLevel)
	case WARN:
		logger.SetLevel(logrus.WarnLevel)
	case ERROR:
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects log output, mostly for tests
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// WithFields returns an entry carrying structured fields
func WithFields(fields Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// Debug logs debug-level messages
func Debug(v ...interface{}) {
	logger.Debug(v...)
}

// Debugf logs debug-level formatted messages
func Debugf(format string, v ...interface{}) {
	logger.Debugf(format, v...)
}

// Info logs info-level messages
func Info(v ...interface{}) {
	logger.Info(v...)
}

// Infof logs info-level formatted messages
func Infof(format string, v ...interface{}) {
	logger.Infof(format, v...)
}

// Warn logs warning-level messages
func Warn(v ...interface{}) {
	logger.Warn(v...)
}

// Warnf logs warning-level formatted messages
func Warnf(format string, v ...interface{}) {
	logger.Warnf(format, v...)
}

// Error logs error-level messages
func Error(v ...interface{}) {
	logger.Error(v...)
}

// Errorf logs error-level formatted messages
func Errorf(format string, v ...interface{}) {
	logger.Errorf(format, v...)
}
