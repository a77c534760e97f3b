package utils

import (
	"io"

	"github.com/sirupsen/logrus"
)

var (
	logger    = logrus.New()
	nodeLog   bool
	serverLog bool
)

// InitLog enables the verbose compute and server logs.
func InitLog(node, server bool) {
	nodeLog = node
	serverLog = server
}

// SetLogLevel changes the level of the shared logger ("debug", "info", ...).
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}

// Logger returns an entry of the shared logger tagged with component.
func Logger(component string) *logrus.Entry {
	return logger.WithField("component", component)
}

// DiscardLogger returns an entry that drops everything.
func DiscardLogger() *logrus.Entry {
	return logrus.NewEntry(&logrus.Logger{Out: io.Discard})
}

func ServerLog(format string, v ...any) {
	if serverLog {
		logger.WithField("component", "server").Infof(format, v...)
	}
}

func NodeLog(role string, format string, v ...any) {
	if nodeLog {
		logger.WithField("role", role).Infof(format, v...)
	}
}

func WarnLog(role string, format string, v ...any) {
	logger.WithField("role", role).Warnf(format, v...)
}
