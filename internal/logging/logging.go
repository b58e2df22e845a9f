package logging

import "go.uber.org/zap"

type Logger = zap.SugaredLogger

// New returns the process logger. Verbose switches to the development
// encoder with debug level enabled.
func New(verbose bool) *Logger {
	if verbose {
		l, _ := zap.NewDevelopment()
		return l.Sugar()
	}
	l, _ := zap.NewProduction()
	return l.Sugar()
}
