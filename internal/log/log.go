// Package log wraps logrus the way the rest of the pack's services do:
// package-level functions over a swappable logger, so stages can log without
// threading a logger through every call.
package log

import "github.com/sirupsen/logrus"

var std = logrus.StandardLogger()

// SetLogger replaces the package-level logger, e.g. to redirect output or
// change formatting in tests.
func SetLogger(l *logrus.Logger) {
	std = l
}

func Infof(format string, args ...any) {
	std.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	std.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	std.Errorf(format, args...)
}

func Debugf(format string, args ...any) {
	std.Debugf(format, args...)
}

func WithField(key string, value any) *logrus.Entry {
	return std.WithField(key, value)
}
