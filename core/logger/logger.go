package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Environment variables read when the logger is first used.
const (
	EnvLoggingLevel  = "INSPECTOR_LOGGING_LEVEL"
	EnvLoggingFormat = "INSPECTOR_LOGGING_FORMAT"
)

const defaultLevel = logrus.WarnLevel

var (
	lg   *logrus.Logger
	once sync.Once
)

// Logger returns the process logger for the inspector.
func Logger() *logrus.Logger {
	once.Do(func() {
		lg = New()
	})
	return lg
}

// New builds a logger from the environment. An unknown level falls back to
// warning, an unknown format falls back to text.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(levelFromEnv())
	l.SetFormatter(formatterFromEnv())
	return l
}

func levelFromEnv() logrus.Level {
	levelStr, ok := os.LookupEnv(EnvLoggingLevel)
	if !ok || levelStr == "" {
		return defaultLevel
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return defaultLevel
	}
	return level
}

func formatterFromEnv() logrus.Formatter {
	switch strings.ToLower(os.Getenv(EnvLoggingFormat)) {
	case "json":
		return &logrus.JSONFormatter{}
	default:
		return &logrus.TextFormatter{FullTimestamp: true}
	}
}
