package logging

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Logger provides leveled logging for the loader, server and AI adapter.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger

	debugEnabled bool
}

// New creates a Logger writing to stdout/stderr. Debug lines are suppressed
// unless debug is true.
func New(debug bool) *Logger {
	return &Logger{
		info:         log.New(os.Stdout, "", 0),
		warn:         log.New(os.Stdout, "", 0),
		err:          log.New(os.Stderr, "", 0),
		debug:        log.New(os.Stdout, "", 0),
		debugEnabled: debug,
	}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Printf(fmt.Sprintf("[%s] \033[32mINFO\033[0m  %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Printf(fmt.Sprintf("[%s] \033[33mWARN\033[0m  %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Printf(fmt.Sprintf("[%s] \033[31mERROR\033[0m %s\n", l.timestamp(), format), args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debugEnabled {
		return
	}
	l.debug.Printf(fmt.Sprintf("[%s] \033[36mDEBUG\033[0m %s\n", l.timestamp(), format), args...)
}
