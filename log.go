package folio

import (
	"os"

	"github.com/labstack/gommon/log"
)

// Logger is the leveled logging contract used outside request handling.
// Both *log.Logger from gommon and echo.Logger satisfy it, so the CLI can
// share a single logger with the HTTP server.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NewLogger returns a gommon logger writing to stderr with the given prefix.
func NewLogger(prefix string, debug bool) *log.Logger {
	l := log.New(prefix)
	l.SetOutput(os.Stderr)
	l.SetHeader(`${time_rfc3339} ${level} ${prefix}`)
	if debug {
		l.SetLevel(log.DEBUG)
	} else {
		l.SetLevel(log.INFO)
	}
	return l
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
