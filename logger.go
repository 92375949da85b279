package main

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// logger is the process-wide logger. It is usable before InitLogger runs
// so tests get sane defaults.
var logger = logrus.New()

// InitLogger configures level and format. Unknown levels fall back to info.
func InitLogger(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logger.SetOutput(os.Stdout)
}

func lobbyLog(lobbyID string) *logrus.Entry {
	return logger.WithField("lobby", lobbyID)
}
