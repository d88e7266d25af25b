package logger

import (
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

const header = `{"time":"${time_rfc3339}","level":"${level}","service":"${prefix}","file":"${short_file}","line":"${line}"}`

// New returns a leveled JSON logger writing to stdout.
func New(service, level string) *log.Logger {
	return NewWithOutput(service, level, os.Stdout)
}

// NewWithOutput returns a leveled JSON logger writing to w.
func NewWithOutput(service, level string, w io.Writer) *log.Logger {
	l := log.New(service)
	l.SetHeader(header)
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	return l
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	l.SetLevel(log.OFF)
	return l
}

// ParseLevel maps DEBUG, INFO, WARN, ERROR and OFF to gommon levels, defaulting to INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return log.DEBUG
	case "WARN":
		return log.WARN
	case "ERROR":
		return log.ERROR
	case "OFF":
		return log.OFF
	default:
		return log.INFO
	}
}
