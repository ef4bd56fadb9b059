package logger

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Init configures the process-wide logrus logger. Level comes from config
// (ultimately LOG_LEVEL); unknown values fall back to info.
func Init(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}
