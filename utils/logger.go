package utils

import (
	"github.com/jfrog/gofrog/log"
)

type Log interface {
	Debug(a ...interface{})
	Info(a ...interface{})
	Warn(a ...interface{})
	Error(a ...interface{})
	Output(a ...interface{})
}

// NullLog is a logger that does nothing
type NullLog struct {
}

func (nl *NullLog) Debug(...interface{}) {
}

func (nl *NullLog) Info(...interface{}) {
}

func (nl *NullLog) Warn(...interface{}) {
}

func (nl *NullLog) Error(...interface{}) {
}

func (nl *NullLog) Output(...interface{}) {
}

// NewDefaultLogger returns the global gofrog logger set to level,
// so packages logging through gofrog/log directly share the same level.
func NewDefaultLogger(level log.LevelType) Log {
	logger := log.GetLogger()
	logger.SetLogLevel(level)
	return logger
}

// GetLogLevel maps the value of a log level environment variable to a gofrog log level. INFO is the default.
func GetLogLevel(value string) log.LevelType {
	switch value {
	case "ERROR":
		return log.ERROR
	case "WARN":
		return log.WARN
	case "DEBUG":
		return log.DEBUG
	default:
		return log.INFO
	}
}
