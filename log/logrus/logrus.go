// Package logrus adapts a *logrus.Entry to zipcache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/zipcache"
)

type Logger struct{ E *logrus.Entry }

var _ zipcache.Logger = Logger{}

// New tags every line with component=zipcache. A nil logger means the logrus
// standard logger.
func New(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return Logger{E: l.WithField("component", "zipcache")}
}

func (l Logger) Debug(msg string, f zipcache.Fields) { l.entry(f).Debug(msg) }
func (l Logger) Info(msg string, f zipcache.Fields)  { l.entry(f).Info(msg) }
func (l Logger) Warn(msg string, f zipcache.Fields)  { l.entry(f).Warn(msg) }
func (l Logger) Error(msg string, f zipcache.Fields) { l.entry(f).Error(msg) }

func (l Logger) entry(f zipcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	// "err" is the cache's convention, logrus.ErrorKey is logrus'
	if err, ok := f["err"].(error); ok {
		rest := make(logrus.Fields, len(f))
		for k, v := range f {
			if k != "err" {
				rest[k] = v
			}
		}
		return l.E.WithFields(rest).WithError(err)
	}
	return l.E.WithFields(logrus.Fields(f))
}
